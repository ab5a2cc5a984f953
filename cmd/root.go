package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	dsn        string
	DB         *sql.DB
	DriverName string
	SchemaName string
)

var RootCmd = &cobra.Command{
	Use:   "metaforge",
	Short: "Relational metadata extraction and validation",
	Long: `
  __  __ _____ _____  _     _____ ___  ____   ____ _____
 |  \/  | ____|_   _|/ \   |  ___/ _ \|  _ \ / ___| ____|
 | |\/| |  _|   | | / _ \  | |_ | | | | |_) | |  _|  _|
 | |  | | |___  | |/ ___ \ |  _|| |_| |  _ <| |_| | |___
 |_|  |_|_____| |_/_/   \_\|_|   \___/|_| \_\\____|_____|

METAFORGE - schema metadata for synthetic-data pipelines

Builds, validates and serializes relational schema metadata: per-column
semantic types inferred from sample values, primary keys, and parent/child
foreign-key relationships, ready to drive downstream data generation.
`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./metaforge.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the current directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("metaforge")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// connectDB resolves the connection settings (flag > config > default),
// opens the database and fills the DB/DriverName/SchemaName globals. Only
// commands touching a live database call it.
func connectDB() error {
	var connStr, driver, schema string

	if config, err := GetActiveDBConfig(); err == nil {
		connStr = config.DSN
		driver = config.Driver
		schema = config.Schema
	} else {
		connStr = viper.GetString("database.dsn")
		driver = viper.GetString("database.driver")
	}
	if connStr == "" {
		return fmt.Errorf("database.dsn is required (via flag or config)")
	}

	if driver == "" {
		// Postgres DSNs name the scheme or an sslmode parameter;
		// everything else defaults to mysql.
		if strings.Contains(connStr, "postgres") || strings.Contains(connStr, "sslmode") {
			driver = "postgres"
		} else {
			driver = "mysql"
		}
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}

	DB = db
	DriverName = driver
	SchemaName = schema

	if SchemaName == "" {
		switch driver {
		case "mysql":
			if err := db.QueryRow("SELECT DATABASE()").Scan(&SchemaName); err != nil {
				return fmt.Errorf("failed to get database name: %w", err)
			}
			if SchemaName == "" {
				return fmt.Errorf("no database selected in DSN")
			}
		case "sqlserver", "mssql":
			SchemaName = "dbo"
		case "oracle":
			// USER_* catalogs need no schema.
		default:
			SchemaName = "public"
		}
	}
	return nil
}
