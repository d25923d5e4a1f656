package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jensneuse/abstractlogger"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "GRAPHQL_ANONYMIZER"

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "graphql-anonymizer",
	Short: "graphql-anonymizer replaces the names and literals of a graphql schema and its queries",
	Long: `graphql-anonymizer renames every type, field, argument, enum value and directive of a schema
and rewrites queries against it with the same names, so both can be shared without
exposing business specific naming or data. Literals are replaced as well.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.graphql-anonymizer.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".graphql-anonymizer")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

var abstractLevels = map[zapcore.Level]abstractlogger.Level{
	zapcore.DebugLevel: abstractlogger.DebugLevel,
	zapcore.InfoLevel:  abstractlogger.InfoLevel,
	zapcore.WarnLevel:  abstractlogger.WarnLevel,
	zapcore.ErrorLevel: abstractlogger.ErrorLevel,
}

// newLogger builds a zap logger writing to stderr, so stdout only carries results.
func newLogger(level string) (abstractlogger.Logger, func(), error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	abstractLevel, ok := abstractLevels[zapLevel]
	if !ok {
		return nil, nil, errors.Errorf("unsupported log level: %s", level)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.Encoding = "console"
	config.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}

	return abstractlogger.NewZapLogger(logger, abstractLevel), func() {
		_ = logger.Sync()
	}, nil
}
