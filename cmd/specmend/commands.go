// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/SpecMend/pkg/config"
	"github.com/AleutianAI/SpecMend/pkg/logging"
)

// --- Global Command Variables ---
var (
	configPath string // Path to the YAML config file
	jsonOutput bool   // Emit machine-readable JSON instead of text
	outputPath string // Where repair writes the fixed document

	cfg       config.Config
	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "specmend",
		Short: "A cli to validate and repair API specification documents",
		Long: `SpecMend validates OpenAPI-style specification documents and
repairs broken ones by iterating a local or remote model against
structural validation and constraint solving.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}

			appLogger, err = logging.New(logging.Config{
				Level:   logging.ParseLevel(cfg.Logging.Level),
				LogDir:  cfg.Logging.Dir,
				Service: "cli",
				JSON:    cfg.Logging.JSON,
			})
			if err != nil {
				return err
			}
			slog.SetDefault(appLogger.Logger)
			return nil
		},
	}

	// --- Validation ---
	validateCmd = &cobra.Command{
		Use:   "validate [spec file]",
		Short: "Validate a specification document without calling any model",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate, // Defined in cmd_validate.go
	}

	// --- Repair ---
	repairCmd = &cobra.Command{
		Use:   "repair [spec file]",
		Short: "Repair a specification document using the configured model backend",
		Args:  cobra.ExactArgs(1),
		RunE:  runRepair, // Defined in cmd_repair.go
	}

	// --- HTTP service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the validation and repair HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	// --- Watch mode ---
	watchCmd = &cobra.Command{
		Use:   "watch [spec file]",
		Short: "Re-validate a specification document whenever it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch, // Defined in cmd_watch.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a specmend config file (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"emit JSON output for scripting")

	repairCmd.Flags().StringVarP(&outputPath, "out", "o", "",
		"write the repaired document to this file instead of stdout")

	rootCmd.AddCommand(validateCmd, repairCmd, serveCmd, watchCmd)
}
