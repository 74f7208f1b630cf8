package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secureview/internal/cache"
	"secureview/internal/config"
	"secureview/internal/logger"
	"secureview/internal/repository"
	"secureview/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users, feedback tasks and department insights",
	Long:  "seed reads a YAML file and upserts its users, feedback tasks and department insight scores into the secureview stores.",
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upsert the contents of a seed file",
	RunE:  runLoad,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a seed file without touching any store",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := ReadSeedFile(flagString(cmd, "file"))
		if err != nil {
			return err
		}
		printUnknownDimensions(cmd, sf)
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d users, %d tasks, %d departments\n",
			len(sf.Users), len(sf.Tasks), len(sf.Insights))
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print the bcrypt hash for a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := service.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

// Execute runs the seed command tree.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cfg := config.Load()

	rootCmd.PersistentFlags().StringP("file", "f", "seed.yaml", "Path to the seed YAML file")

	loadCmd.Flags().String("mongo-uri", cfg.MongoURI, "MongoDB connection URI (defaults to MONGO_URI)")
	loadCmd.Flags().String("mongo-db", cfg.MongoDB, "MongoDB database name (defaults to MONGO_DB)")
	loadCmd.Flags().String("redis", cfg.RedisAddr, "Redis address used to invalidate cached reports (empty to skip)")
	loadCmd.Flags().Duration("timeout", 30*time.Second, "Overall timeout for the load")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(hashCmd)
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func runLoad(cmd *cobra.Command, args []string) error {
	sf, err := ReadSeedFile(flagString(cmd, "file"))
	if err != nil {
		return err
	}
	printUnknownDimensions(cmd, sf)

	log, err := logger.New("dev")
	if err != nil {
		return err
	}
	defer log.Sync()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(flagString(cmd, "mongo-uri")))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(flagString(cmd, "mongo-db"))
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Warn("ensure indexes failed", "error", err)
	}

	var reportCache cache.InsightCache
	if addr := flagString(cmd, "redis"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, cached reports expire on their own", "error", err)
		} else {
			reportCache = cache.NewInsightCache(rdb, 0)
		}
	}

	l := &loader{
		users:    repository.NewUserRepo(db),
		tasks:    repository.NewTaskRepo(db),
		insights: service.NewInsightService(repository.NewInsightRepo(db), reportCache, log),
		hash:     service.HashPassword,
		log:      log,
	}
	res, err := l.Load(ctx, sf)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d tasks, %d departments\n", res.Users, res.Tasks, res.Departments)
	return nil
}

func printUnknownDimensions(cmd *cobra.Command, sf *SeedFile) {
	unknown := sf.UnknownDimensions()
	depts := make([]string, 0, len(unknown))
	for d := range unknown {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	for _, d := range depts {
		names := unknown[d]
		sort.Strings(names)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: dimensions %v are not classified and will be skipped\n", d, names)
	}
}
