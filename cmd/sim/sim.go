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


package sim

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/pkg/command"
	"jinr.ru/greenlab/go-pico/pkg/config"
)

const (
	ModelOptionName = "model"
)

// NewCommand runs a simulated bridge daemon on the configured ports
func NewCommand(cfg *config.Config) *cobra.Command {
	var modelName string
	cmd := &cobra.Command{
		Use:   "bridge-sim",
		Short: "Start a simulated bridge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelName != "" {
				cfg.Model = modelName
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartBridgeSim(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&modelName, ModelOptionName, "", fmt.Sprintf("Scope model. E.g. %s", config.DefaultModel))

	return cmd
}
