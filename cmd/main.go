package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"gopoint/config"
	"gopoint/internal/pkg/cache"
	"gopoint/internal/pkg/database"
	"gopoint/internal/pkg/hasher"
	"gopoint/internal/pkg/logger"
	"gopoint/internal/pkg/middleware"
	"gopoint/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"gopoint/internal/api/auth"
	"gopoint/internal/api/product"
	"gopoint/internal/api/router"
	"gopoint/internal/api/user"
	"gopoint/internal/repository/productrepo"
	"gopoint/internal/repository/userrepo"
	"gopoint/internal/service/authservice"
	"gopoint/internal/service/productservice"
	"gopoint/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoPoint...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não houver, seguimos: as variáveis essenciais podem estar no
	// ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Falha aqui (fatal) se faltar DATABASE_URL ou JWT_SECRET_KEY.
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Cliente Redis inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Infra -> Repository -> Service -> Handler

	// A. Serviços de segurança (lidos do config uma vez, read-only depois)
	passwordHasher := hasher.NewArgon2Hasher(hasher.Params{
		Time:     cfg.ArgonTime,
		MemoryKB: cfg.ArgonMemoryKB,
		Threads:  cfg.ArgonThreads,
	})
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	appLog.Debug("Hasher Argon2id e serviço de tokens JWT inicializados.", nil)

	// B. Repositórios (Camada de Acesso a Dados)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// C. Serviços (Camada de Lógica de Negócio)
	authSvc := authservice.NewService(userRepo, passwordHasher, tokenSvc, appLog)
	userSvc := userservice.NewService(userRepo, passwordHasher, appLog)
	productSvc := productservice.NewService(productRepo, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// D. Handlers (Camada de Apresentação)
	authHandler := auth.NewHandler(authSvc, appLog)
	userHandler := user.NewHandler(userSvc, appLog)
	productHandler := product.NewHandler(productSvc, appLog)
	appLog.Debug("Handlers inicializados.", nil)

	// E. Gate de autenticação: valida o token E re-resolve o usuário no banco
	// antes de qualquer handler protegido rodar.
	authMW := middleware.NewAuthMiddleware(tokenSvc, userRepo)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(authHandler, userHandler, productHandler, authMW)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor GoPoint ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	// Captura de sinal para desligamento controlado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
