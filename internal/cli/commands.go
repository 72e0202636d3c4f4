// Package cli wires the cobra command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kataras/golog"
	"github.com/spf13/cobra"

	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/display"
	"github.com/laochendeai/tradingagents-go/internal/graph"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/models"
	"github.com/laochendeai/tradingagents-go/internal/storage/sqlite"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tradingagents",
		Short: "多智能体股票分析系统",
		Long: `tradingagents 使用多个大模型智能体协作完成股票分析：
四位分析师并行研判，多空研究员多轮辩论，交易员制定策略，
风险管理团队给出最终决策。`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd)
			if err != nil {
				return err
			}
			return runInteractive(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().Bool("debug", false, "开启调试日志")

	rootCmd.AddCommand(newAnalyzeCmd(&configPath))
	rootCmd.AddCommand(newHistoryCmd(&configPath))
	rootCmd.AddCommand(newConfigCmd(&configPath))

	return rootCmd
}

const defaultConfigFile = "tradingagents.json"

func loadConfig(path string, cmd *cobra.Command) (*config.Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}
	return cfg, nil
}

func buildGraph(cfg *config.Config, selected []string) (*graph.TradingGraph, func(), error) {
	logger := log.NewGologLogger(golog.New())
	if cfg.Debug {
		logger.SetLevel(log.LogLevelDebug)
	}

	opts := []graph.Option{}
	if len(selected) > 0 {
		opts = append(opts, graph.WithAnalysts(selected...))
	}
	if cfg.SessionDBPath != "" {
		store, err := sqlite.Open(cfg.SessionDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		opts = append(opts, graph.WithRecorder(store))

		g, err := graph.New(cfg, logger, opts...)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = g.Close(ctx)
			_ = store.Close()
		}
		return g, cleanup, nil
	}

	g, err := graph.New(cfg, logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = g.Close(ctx)
	}
	return g, cleanup, nil
}

// signalContext is cancelled on SIGINT/SIGTERM so a running session ends as
// cancelled instead of being killed mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var (
		depthFlag    string
		analystsFlag []string
	)

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "分析一只股票并输出完整报告",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd)
			if err != nil {
				return err
			}

			g, cleanup, err := buildGraph(cfg, analystsFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signalContext()
			defer stop()

			session, err := g.AnalyzeStock(ctx, args[0], models.Depth(depthFlag))
			if session != nil {
				fmt.Println(display.RenderSession(session))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&depthFlag, "depth", "medium", "分析深度: shallow|medium|deep")
	cmd.Flags().StringSliceVar(&analystsFlag, "analysts", nil, "指定参与的分析师（默认全部）")
	return cmd
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [SESSION_ID]",
		Short: "查看历史会话，或展示某次会话的完整报告",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd)
			if err != nil {
				return err
			}
			if cfg.SessionDBPath == "" {
				return fmt.Errorf("未配置会话数据库路径")
			}

			store, err := sqlite.Open(cfg.SessionDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				session, err := store.LoadSession(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					data, err := json.MarshalIndent(session, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				}
				fmt.Println(display.RenderSession(session))
				return nil
			}

			rows, err := store.ListSessions(ctx, limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("暂无历史会话")
				return nil
			}
			for _, row := range rows {
				fmt.Printf("%s  %s  %-8s %-9s %-7s %s\n",
					row.ID, row.StartedAt.Format("2006-01-02 15:04"),
					row.Symbol, row.Status, row.Depth, row.FinalDecision)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "最多展示的会话数量")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 形式导出会话")
	return cmd
}

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看与管理配置",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "展示当前配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd)
			if err != nil {
				return err
			}
			fmt.Printf("默认服务商: %s\n", cfg.DefaultProvider)
			fmt.Printf("记忆后端:   %s（上限 %d 条）\n", cfg.Memory.Backend, cfg.Memory.MaxMemories)
			fmt.Printf("会话数据库: %s\n", cfg.SessionDBPath)
			fmt.Printf("在线数据:   %v\n", cfg.OnlineData)
			fmt.Println("\n智能体模型绑定：")
			for agentID, binding := range cfg.AgentModels {
				fmt.Printf("  %-22s %s\n", agentID, binding)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-model AGENT_ID PROVIDER:MODEL",
		Short: "修改某个智能体的模型绑定并保存",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, cmd)
			if err != nil {
				return err
			}
			cfg.AgentModels[args[0]] = args[1]
			path := *configPath
			if path == "" {
				path = defaultConfigFile
			}
			if err := config.SaveFile(path, cfg); err != nil {
				return err
			}
			fmt.Printf("已更新 %s -> %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}

func runInteractive(cfg *config.Config) error {
	fmt.Println("欢迎使用 tradingagents 多智能体股票分析系统")

	for {
		symbol, err := PromptForSymbol()
		if err != nil {
			return err
		}
		depth, err := PromptForDepth()
		if err != nil {
			return err
		}
		selected, err := PromptForAnalysts()
		if err != nil {
			return err
		}

		g, cleanup, err := buildGraph(cfg, selected)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		session, err := g.AnalyzeStock(ctx, symbol, depth)
		stop()
		if session != nil {
			fmt.Println(display.RenderSession(session))
		}
		cleanup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "分析未完成: %v\n", err)
		}

		again, err := PromptContinue()
		if err != nil || !again {
			return err
		}
	}
}
