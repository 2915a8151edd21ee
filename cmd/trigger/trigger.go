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


package trigger

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/device"
	"jinr.ru/greenlab/go-pico/pkg/srv"
)

const (
	TypeOptionName   = "type"
	SourceOptionName = "source"
	LevelOptionName  = "level"
	EdgeOptionName   = "edge"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Read and configure the trigger",
	}
	cmd.AddCommand(NewGetCommand(cfg))
	cmd.AddCommand(NewSetCommand(cfg))
	cmd.AddCommand(NewPullCommand(cfg))
	return cmd
}

func NewGetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the cached trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := command.NewApiClient(cfg).Trigger()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), setup)
		},
	}
}

// NewSetCommand pushes a complete edge trigger to the bridge
func NewSetCommand(cfg *config.Config) *cobra.Command {
	setup := &srv.TriggerSetup{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Push a trigger to the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := command.NewApiClient(cfg).PushTrigger(setup)
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&setup.Type, TypeOptionName, string(device.TriggerTypeEdge), "Trigger type")
	cmd.Flags().StringVar(&setup.Source, SourceOptionName, "A", "Source channel name or EXT")
	cmd.Flags().Float64Var(&setup.Level, LevelOptionName, 0, "Level in volts")
	cmd.Flags().StringVar(&setup.Edge, EdgeOptionName, string(device.EdgeRising), "Edge direction: rising, falling or any")

	return cmd
}

func NewPullCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Read the trigger back from the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := command.NewApiClient(cfg).PullTrigger()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), setup)
		},
	}
}
