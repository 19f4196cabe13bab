package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	Version = "1.4.2"
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Synthetic retail banking dataset generator for Meridian Community Bank",
	Long: `Meridian generates a realistic, referentially consistent retail banking
dataset into PostgreSQL: core banking, CRM, risk, payments, treasury,
general ledger and a three-layer warehouse, with a small number of
documented data-quality defects injected on purpose.

It also ships three read-only query surfaces over the generated estate:
SQL, metadata catalog search, and SPARQL over the banking ontology.`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("meridian version %s\n", Version)
			os.Exit(0)
		}
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./meridian.yaml)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("meridian")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// newLogger builds the structured logger shared by every subcommand.
func newLogger() (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.Encoding = "console"
	logCfg.EncoderConfig.EncodeTime = nil
	return logCfg.Build()
}

func printError(err error) {
	color.Red("✗ %v", err)
}
