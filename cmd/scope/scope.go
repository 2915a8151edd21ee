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


package scope

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
)

func NewScopeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "scope",
		Short: "Show the scope served by the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := command.NewApiClient(cfg).Scope()
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), info)
		},
	}
}

func NewModelsCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported scope models",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := command.NewApiClient(cfg).Models()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range models {
				fmt.Fprintf(out, "%-8s series=%s channels=%d bandwidth=%dMHz\n",
					m.Name, m.Series, m.AnalogChannels, m.BandwidthMHz)
			}
			return nil
		},
	}
}
