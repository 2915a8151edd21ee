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


package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-pico/cmd/acquire"
	"jinr.ru/greenlab/go-pico/cmd/capture"
	"jinr.ru/greenlab/go-pico/cmd/channel"
	"jinr.ru/greenlab/go-pico/cmd/completion"
	"jinr.ru/greenlab/go-pico/cmd/config"
	"jinr.ru/greenlab/go-pico/cmd/scope"
	"jinr.ru/greenlab/go-pico/cmd/serve"
	"jinr.ru/greenlab/go-pico/cmd/sim"
	"jinr.ru/greenlab/go-pico/cmd/timebase"
	"jinr.ru/greenlab/go-pico/cmd/trigger"
	pkgconfig "jinr.ru/greenlab/go-pico/pkg/config"
	"jinr.ru/greenlab/go-pico/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	ConfigOptionName   = "config"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, configPath string
	cfg := pkgconfig.NewDefaultConfig()
	cmd := &cobra.Command{
		Use:          "go-pico",
		Short:        "Tool to work with PicoScope oscilloscopes through the bridge daemon",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg.SetPath(configPath)
			}
			if err := cfg.Load(); err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if cfg.LogFile != "" {
				_, err := log.InitFile(cfg.LogFile, cfg.LogLevel)
				return err
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand(cfg))
	cmd.AddCommand(serve.NewCommand(cfg))
	cmd.AddCommand(sim.NewCommand(cfg))
	cmd.AddCommand(scope.NewScopeCommand(cfg))
	cmd.AddCommand(scope.NewModelsCommand(cfg))
	cmd.AddCommand(channel.NewCommand(cfg))
	cmd.AddCommand(trigger.NewCommand(cfg))
	cmd.AddCommand(acquire.NewCommand(cfg))
	cmd.AddCommand(timebase.NewCommand(cfg))
	cmd.AddCommand(capture.NewCommand(cfg))
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&configPath, ConfigOptionName, "", fmt.Sprintf("Config file. Default %s", pkgconfig.DefaultConfigPath()))
	return cmd
}
