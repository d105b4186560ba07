package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"smsledger/config"
	"smsledger/database"
	"smsledger/llm"
	"smsledger/logger"
	"smsledger/middleware"
	"smsledger/router"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// @title 短信记账 API
// @version 1.0
// @description 银行短信 Webhook 接入、AI 解析、人工审核与确认入账
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "v1.0.0"

var (
	configFile string
	port       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "smsledger",
		Short:        "短信记账服务",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "外部配置文件路径（可选）")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "监听端口，如: 8080 或 :8080")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据表迁移并写入预置分类",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.Init(cfg); err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}
			log.Info().Msg("迁移完成")
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("短信记账 " + version)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Info().Str("port", port).Msg("命令行指定端口")
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}

	middleware.InitJWT(cfg)

	client, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		return fmt.Errorf("初始化 AI 解析服务失败: %w", err)
	}

	r := router.SetupRouter(cfg, database.NewStore(database.DB), client)

	log.Info().
		Str("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port)).
		Str("api", fmt.Sprintf("http://localhost%s/api/v1/", cfg.Server.Port)).
		Msg("短信记账服务已启动")

	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("服务器启动失败: %w", err)
	}
	return nil
}
