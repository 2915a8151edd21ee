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


package channel

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/srv"
)

const (
	EnableOptionName      = "enable"
	CouplingOptionName    = "coupling"
	OffsetOptionName      = "offset"
	RangeOptionName       = "range"
	AttenuationOptionName = "atten"
	BWLimitOptionName     = "bwlimit"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Read and configure analog channels",
	}
	cmd.AddCommand(NewGetCommand(cfg))
	cmd.AddCommand(NewSetCommand(cfg))
	return cmd
}

// NewGetCommand prints one channel or all of them
func NewGetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get [CHANNEL]",
		Short: "Show channel settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if len(args) == 1 {
				ch, err := apiClient.Channel(args[0])
				if err != nil {
					return err
				}
				return command.PrintYaml(cmd.OutOrStdout(), ch)
			}
			channels, err := apiClient.Channels()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), channels)
		},
	}
}

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var enable bool
	var coupling string
	var offset, rng, atten float64
	var bwLimit uint
	cmd := &cobra.Command{
		Use:   "set CHANNEL",
		Short: "Change channel settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			setup := &srv.ChannelSetup{}
			if flags.Changed(EnableOptionName) {
				setup.Enabled = &enable
			}
			if flags.Changed(CouplingOptionName) {
				setup.Coupling = &coupling
			}
			if flags.Changed(OffsetOptionName) {
				setup.Offset = &offset
			}
			if flags.Changed(RangeOptionName) {
				setup.Range = &rng
			}
			if flags.Changed(AttenuationOptionName) {
				setup.Attenuation = &atten
			}
			if flags.Changed(BWLimitOptionName) {
				setup.BandwidthLimit = &bwLimit
			}
			ch, err := command.NewApiClient(cfg).SetChannel(args[0], setup)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), ch)
		},
	}
	cmd.Flags().BoolVar(&enable, EnableOptionName, true, "Enable or disable the channel")
	cmd.Flags().StringVar(&coupling, CouplingOptionName, "", "Coupling. One of: "+couplings())
	cmd.Flags().Float64Var(&offset, OffsetOptionName, 0, "Vertical offset in volts")
	cmd.Flags().Float64Var(&rng, RangeOptionName, 0, "Full scale range in volts")
	cmd.Flags().Float64Var(&atten, AttenuationOptionName, 1, "Probe attenuation factor")
	cmd.Flags().UintVar(&bwLimit, BWLimitOptionName, 0, "Bandwidth limit in MHz, 0 for full bandwidth")

	return cmd
}

func couplings() string {
	s := ""
	for i, c := range device.Couplings {
		if i > 0 {
			s += ", "
		}
		s += string(c)
	}
	return s
}
