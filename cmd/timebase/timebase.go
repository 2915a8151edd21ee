/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/


package timebase

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/srv"
)

const (
	InterleaveOptionName = "interleave"
	RateOptionName       = "rate"
	DepthOptionName      = "depth"
	OffsetOptionName     = "offset-fs"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timebase",
		Short: "Read and configure sample rate, depth and interleaving",
	}
	cmd.AddCommand(NewGetCommand(cfg))
	cmd.AddCommand(NewSetCommand(cfg))
	cmd.AddCommand(NewCandidatesCommand(cfg))
	return cmd
}

func NewGetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the timebase",
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := command.NewApiClient(cfg).Timebase()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), tb)
		},
	}
}

// NewSetCommand applies interleave first so rate and depth are checked
// against the right candidate lists
func NewSetCommand(cfg *config.Config) *cobra.Command {
	var interleave bool
	var rate, depth uint64
	var offset int64
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the timebase",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			setup := &srv.TimebaseSetup{}
			if flags.Changed(InterleaveOptionName) {
				setup.Interleave = &interleave
			}
			if flags.Changed(RateOptionName) {
				setup.SampleRate = &rate
			}
			if flags.Changed(DepthOptionName) {
				setup.SampleDepth = &depth
			}
			if flags.Changed(OffsetOptionName) {
				setup.TriggerOffsetFs = &offset
			}
			tb, err := command.NewApiClient(cfg).SetTimebase(setup)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), tb)
		},
	}
	cmd.Flags().BoolVar(&interleave, InterleaveOptionName, false, "Enable interleaved sampling")
	cmd.Flags().Uint64Var(&rate, RateOptionName, 0, "Sample rate in samples per second")
	cmd.Flags().Uint64Var(&depth, DepthOptionName, 0, "Sample depth in points")
	cmd.Flags().Int64Var(&offset, OffsetOptionName, 0, "Trigger offset in femtoseconds")

	return cmd
}

func NewCandidatesCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List the sample rates and depths the scope accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cands, err := command.NewApiClient(cfg).Candidates()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), cands)
		},
	}
}
