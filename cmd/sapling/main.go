package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "SAPLING"

type rootCmdConfig struct {
	verbose    bool
	debug      bool
	configFile string
	logger     *zap.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "sapling",
		Short: "sapling is a tool to grow decision trees",
		Long:  `A tool to grow binary decision trees from your data, test them, export them and use them to make predictions`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			err := config.bindConfig(cmd)
			if err != nil {
				return err
			}
			config.logger = newLogger(config.verbose, config.debug)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress information on STDERR")
	rootCmd.PersistentFlags().BoolVar(&(config.debug), "debug", false, "log debug information on STDERR, including the development of every node when growing trees")
	rootCmd.PersistentFlags().StringVar(&(config.configFile), "config", "", "path to a YAML file with values for any flag, keyed by flag name (flags can also be set with SAPLING_FLAG_NAME environment variables)")
	rootCmd.AddCommand(versionCmd(), growCmd(config), testCmd(config), predictCmd(config), exportCmd(config), setCmd(config))
	return rootCmd
}

/*
bindConfig sets every flag of cmd that was not given on the command line to
the value viper finds for it, either on the config file or on an environment
variable named after the flag with the SAPLING prefix.
*/
func (rcc *rootCmdConfig) bindConfig(cmd *cobra.Command) error {
	v := viper.New()
	if rcc.configFile != "" {
		v.SetConfigFile(rcc.configFile)
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("reading config file %s: %v", rcc.configFile, err)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		err = cmd.Flags().Set(f.Name, v.GetString(f.Name))
		if err != nil {
			err = fmt.Errorf("setting %s from configuration: %v", f.Name, err)
		}
	})
	return err
}

func (rcc *rootCmdConfig) Context() context.Context {
	rcc.setContextAndCancelFunc()
	return rcc.ctx
}

func (rcc *rootCmdConfig) ContextCancelFunc() context.CancelFunc {
	rcc.setContextAndCancelFunc()
	return rcc.cancelFunc
}

func (rcc *rootCmdConfig) setContextAndCancelFunc() {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = context.WithCancel(context.Background())
	}
}

// exit prints err on STDERR and exits with the given code
func exit(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
