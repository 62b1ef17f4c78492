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
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "scribe",
		Short: "An LLM-assisted editor for long-form manuscripts",
		Long: `Scribe keeps a manuscript as an ordered list of typed blocks and
pairs it with a language-model collaborator for corrections and
rewrites, with bounded undo and a reviewable change trail.`,
	}

	editCmd = &cobra.Command{
		Use:   "edit",
		Short: "Open the manuscript in the interactive editor",
		RunE:  runEdit,
	}

	importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Import a text or markdown file as the manuscript",
		Long: `Reads the file, splits it into typed blocks on blank-line
boundaries, and replaces the stored manuscript with the result.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	importYes bool

	exportCmd = &cobra.Command{
		Use:   "export [file]",
		Short: "Write the manuscript out as markdown",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Run one revision sweep over the manuscript without the editor",
		Long: `Sends every paragraph to the configured backend for correction,
then prints a word-level diff of what changed. The pre-sweep state is
kept as the comparison snapshot.`,
		RunE: runSweep,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the scribe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
)

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false,
		"overwrite an existing manuscript without asking")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
}
