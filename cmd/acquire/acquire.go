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


package acquire

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/srv"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "acquire start|single|stop|status",
		Short:     "Arm, disarm or inspect acquisition",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "single", "stop", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			var status *srv.AcquisitionStatus
			var err error
			switch args[0] {
			case "status":
				status, err = apiClient.Acquisition()
			case "start", "single", "stop":
				status, err = apiClient.AcquisitionAction(args[0])
			default:
				return fmt.Errorf("wrong acquisition command %q. Must be one of start/single/stop/status", args[0])
			}
			if err != nil {
				return err
			}
			return command.PrintYaml(cmd.OutOrStdout(), status)
		},
	}
	return cmd
}
