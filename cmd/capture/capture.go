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


package capture

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/srv"
)

const (
	SamplesOptionName = "samples"
	ChannelOptionName = "channel"
	OutOptionName     = "out"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Browse and export acquired waveforms",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewShowCommand(cfg))
	cmd.AddCommand(NewExportCommand(cfg))
	return cmd
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List captures",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := command.NewApiClient(cfg).Captures()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range list {
				fmt.Fprintf(out, "%s %s %s channels=%s points=%d\n", s.ID, s.Timestamp.Format("2006-01-02T15:04:05.000"),
					s.Model, strings.Join(s.Channels, ","), s.Points)
			}
			return nil
		},
	}
}

// NewShowCommand prints capture metadata and per channel statistics
func NewShowCommand(cfg *config.Config) *cobra.Command {
	var samples bool
	cmd := &cobra.Command{
		Use:   "show [ID]",
		Short: "Show one capture, the latest by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := srv.LatestCapture
			if len(args) == 1 {
				id = args[0]
			}
			c, err := command.NewApiClient(cfg).Capture(id, samples)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().BoolVar(&samples, SamplesOptionName, false, "Include samples")
	return cmd
}

// NewExportCommand saves the samples of one channel as a numpy file
func NewExportCommand(cfg *config.Config) *cobra.Command {
	var channel, out string
	cmd := &cobra.Command{
		Use:   "export [ID]",
		Short: "Export a channel of a capture to a .npy file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := srv.LatestCapture
			if len(args) == 1 {
				id = args[0]
			}
			data, err := command.NewApiClient(cfg).CaptureNpy(id, channel)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s_%s.npy", id, channel)
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			cmd.Printf("Saved %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, ChannelOptionName, "A", "Channel name")
	cmd.Flags().StringVar(&out, OutOptionName, "", "Output file. Default <id>_<channel>.npy")
	return cmd
}
