package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LJTian/TrendingNews/internal/app"
	"github.com/LJTian/TrendingNews/internal/config"
)

// 命令行入口：默认执行一轮热门新闻聚合后退出，适合手动触发或外部定时任务
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	region string
	count  int
	limit  int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var a *app.App

	root := &cobra.Command{
		Use:          "collect",
		Short:        "Aggregate trending news once and print the result as JSON",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyDefaults(cmd, opts, cfg)
			a, err = app.New(cfg)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.Aggregator.Trending(cmd.Context(), opts.region, opts.count, opts.limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	root.PersistentFlags().StringVar(&opts.region, "region", "", "trend region code (default from REGION)")
	root.PersistentFlags().IntVar(&opts.count, "count", 0, "number of trending keywords (default from TREND_COUNT)")
	root.PersistentFlags().IntVar(&opts.limit, "limit", 0, "articles per keyword (default from ARTICLE_LIMIT)")

	root.AddCommand(&cobra.Command{
		Use:   "trends",
		Short: "Print the current trending keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, a.Aggregator.Keywords(cmd.Context(), opts.region, opts.count))
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "keyword <keyword>",
		Short: "Aggregate news for a single keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.Aggregator.NewsByKeyword(cmd.Context(), args[0], opts.limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		},
	})

	return root
}

// applyDefaults 未显式指定的参数取配置值
func applyDefaults(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if !cmd.Flags().Changed("region") {
		opts.region = cfg.Region
	}
	if !cmd.Flags().Changed("count") {
		opts.count = cfg.TrendCount
	}
	if !cmd.Flags().Changed("limit") {
		opts.limit = cfg.ArticleLimit
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("encode output: %v", err)
		return err
	}
	return nil
}
