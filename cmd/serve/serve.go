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


package serve

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
	ModelOptionName    = "model"
	SimulateOptionName = "simulate"
	StoreOptionName    = "store"
	AddressOptionName  = "address"
	PortOptionName     = "port"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var modelName, address string
	var simulate, store bool
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the bridge and start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed(ModelOptionName) {
				cfg.Model = modelName
			}
			if flags.Changed(SimulateOptionName) {
				cfg.Simulate = simulate
			}
			if flags.Changed(StoreOptionName) {
				cfg.Acquisition.Store = store
			}
			if flags.Changed(AddressOptionName) {
				cfg.Api.Address = address
			}
			if flags.Changed(PortOptionName) {
				cfg.Api.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&modelName, ModelOptionName, "", fmt.Sprintf("Scope model. E.g. %s", config.DefaultModel))
	cmd.Flags().BoolVar(&simulate, SimulateOptionName, false, "Use an in-process simulated bridge")
	cmd.Flags().BoolVar(&store, StoreOptionName, false, "Persist captures to the database")
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("API address to bind. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("API port to bind. E.g. %d", config.DefaultApiPort))

	return cmd
}
