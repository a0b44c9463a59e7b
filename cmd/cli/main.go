package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"recoverypilot/domain/patient"
	"recoverypilot/internal"
	"recoverypilot/internal/config"
	"recoverypilot/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the container built before each command runs
type cli struct {
	container *container.Container
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "recoverypilot",
		Short: "Cluster post-surgical patients into recovery phenotypes",
		Long: `Cluster post-surgical patients into recovery phenotypes.

Configuration is read from the environment (and .env), optionally on top of a
YAML file named by CONFIG_FILE. Use STORE_DRIVER=bolt to keep added patients
between invocations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load()
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLoggerWithWriter(internal.ParseLogLevel(appConfig.LogLevel), cmd.ErrOrStderr())
			c.container, err = container.New(cmd.Context(), appConfig, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.container.Shutdown(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		c.newClusterCmd(),
		c.newReclusterCmd(),
		c.newOptimalKCmd(),
		c.newImportanceCmd(),
		c.newAssignCmd(),
		c.newAddCmd(),
		c.newResetCmd(),
	)
	return rootCmd
}

func (c *cli) newClusterCmd() *cobra.Command {
	var k, maxIterations int

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster the training population",
		Long: `Run K-means over the seed corpus plus added patients and print the clusters.

Example: recoverypilot cluster --k 4 --max-iterations 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.container.Engine.Cluster(cmd.Context(), k, maxIterations)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&k, "k", 4, "Number of clusters")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 100, "Iteration cap")
	return cmd
}

func (c *cli) newReclusterCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "recluster",
		Short: "Recluster with the last k (or --k)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *int
			if cmd.Flags().Changed("k") {
				target = &k
			}
			result, err := c.container.Engine.Recluster(cmd.Context(), target)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Number of clusters (default: last k)")
	return cmd
}

func (c *cli) newOptimalKCmd() *cobra.Command {
	var minK, maxK int

	cmd := &cobra.Command{
		Use:   "optimal-k",
		Short: "Report inertia and silhouette for a range of k",
		Long: `Evaluate every k in [min, max] for an elbow or silhouette comparison.

Example: recoverypilot optimal-k --min 2 --max 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluations, err := c.container.Engine.FindOptimalK(cmd.Context(), minK, maxK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%4s %14s %12s\n", "k", "inertia", "silhouette")
			for _, ev := range evaluations {
				fmt.Fprintf(out, "%4d %14.3f %12.4f\n", ev.K, ev.Inertia, ev.Silhouette)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minK, "min", 2, "Smallest k")
	cmd.Flags().IntVar(&maxK, "max", 8, "Largest k")
	return cmd
}

func (c *cli) newImportanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importance",
		Short: "Rank features by variance across cluster centroids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			importance, err := c.container.Engine.GetFeatureImportance(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, fi := range importance {
				fmt.Fprintf(out, "%2d. %-24s %12.4f\n", i+1, fi.Feature, fi.Variance)
			}
			return nil
		},
	}
}

func (c *cli) newAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign [patient.json|-]",
		Short: "Assign a patient to the current clustering without adding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readPatient(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			assignment, err := c.container.Engine.AssignPatient(cmd.Context(), v)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), assignment)
		},
	}
}

func (c *cli) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [patient.json|-]",
		Short: "Add a patient to the training population",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readPatient(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			added, err := c.container.Engine.AddPatient(cmd.Context(), v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added patient %s (%d new patients)\n",
				added.ID, len(c.container.Engine.GetNewPatients(cmd.Context())))
			return nil
		},
	}
}

func (c *cli) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all added patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.container.Engine.ResetNewPatients(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "New patients cleared")
			return nil
		},
	}
}

// readPatient decodes a FeatureVector from path, or from stdin for "-"
func readPatient(stdin io.Reader, path string) (patient.FeatureVector, error) {
	var v patient.FeatureVector
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return v, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode patient from %s: %w", path, err)
	}
	return v, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
