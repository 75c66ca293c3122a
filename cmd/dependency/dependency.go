/*
 *     Copyright 2024 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dependency

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/mitchellh/mapstructure"
	"github.com/phayes/freeport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	logger "github.com/greenbridge/ecoscore/internal/ecolog"
)

// DefaultConfigDir holds <binary>.yaml when --config is not given.
var DefaultConfigDir = "/etc/ecoscore"

// InitCommandAndConfig initializes flags binding and common sub cmds.
// config is a pointer to configuration struct.
func InitCommandAndConfig(cmd *cobra.Command, useConfigFile bool, config any) {
	rootName := cmd.Root().Name()
	cobra.OnInitialize(func() { initConfig(useConfigFile, rootName, config) })

	if !cmd.HasParent() {
		// Add common flags
		flags := cmd.PersistentFlags()
		flags.Bool("console", false, "whether logger output records to the stdout")
		flags.Bool("verbose", false, "whether logger use debug level")
		flags.Int("pprof-port", -1, "listen port for pprof and statsview, 0 represents random port")
		if useConfigFile {
			flags.String("config", "", fmt.Sprintf("the path of configuration file with yaml extension name, default is %s, it can also be set by env var: %s", filepath.Join(DefaultConfigDir, rootName+".yaml"), strings.ToUpper(rootName+"_config")))
		}

		// Bind common flags
		if err := viper.BindPFlags(flags); err != nil {
			panic(fmt.Errorf("bind common flags to viper: %w", err))
		}

		// Add common cmds only on root cmd
		cmd.AddCommand(VersionCmd)
	}
}

// BindFlags binds flags of a command to viper keys, key is the mapstructure path of the config field.
func BindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(fmt.Errorf("bind flag %s to viper: %w", flag, err))
		}
	}
}

// PrintConfig logs the effective configuration.
func PrintConfig(name string, config any) {
	s, err := yaml.Marshal(config)
	if err != nil {
		logger.Warnf("marshal %s configuration: %v", name, err)
		return
	}

	logger.Infof("%s configuration:\n%s", name, string(s))
}

// InitMonitor serves pprof and statsview, it returns the stop function.
func InitMonitor(pprofPort int) func() {
	if pprofPort < 0 {
		return func() {}
	}

	if pprofPort == 0 {
		port, err := freeport.GetFreePort()
		if err != nil {
			logger.Warnf("get free port for pprof: %v", err)
			return func() {}
		}
		pprofPort = port
	}

	debugAddr := fmt.Sprintf("localhost:%d", pprofPort)
	viewer.SetConfiguration(viewer.WithAddr(debugAddr))
	vm := statsview.New()

	logger.With("pprof", fmt.Sprintf("http://%s/debug/pprof", debugAddr),
		"statsview", fmt.Sprintf("http://%s/debug/statsview", debugAddr)).
		Infof("enable pprof at %s", debugAddr)

	go func() {
		if err := vm.Start(); err != nil {
			logger.Warnf("serve pprof error: %v", err)
		}
	}()

	return func() {
		vm.Stop()
	}
}

// SetupQuitSignalHandler calls handler once on the first quit signal.
func SetupQuitSignalHandler(handler func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	go func() {
		var done bool
		for sig := range signals {
			logger.Warnf("receive %s signal", sig)
			if !done {
				done = true
				handler()
				logger.Warnf("handle signal %s finish", sig)
			}
		}
	}()
}

func initConfig(useConfigFile bool, name string, config any) {
	// Use config file and read once.
	if useConfigFile {
		cfgFile := viper.GetString("config")
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(DefaultConfigDir)
			viper.SetConfigName(name)
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix(name)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if useConfigFile {
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				panic(fmt.Errorf("read config file %s: %w", viper.ConfigFileUsed(), err))
			}
		} else {
			logger.Infof("use config file %s", viper.ConfigFileUsed())
		}
	}

	if err := viper.Unmarshal(config, initDecoderConfig); err != nil {
		panic(fmt.Errorf("unmarshal config to struct: %w", err))
	}
}

func initDecoderConfig(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(func(from, to reflect.Type, v any) (any, error) {
		switch to {
		case reflect.TypeOf([]string{}):
			if s, ok := v.(string); ok {
				return strings.Split(s, ","), nil
			}
		}
		return v, nil
	}, mapstructure.StringToTimeDurationHookFunc())
}
