// seed carga un usuario demo con un catálogo de productos y algunas ventas.
//
// Uso: go run ./cmd/seed [email] [password]
// Por defecto demo@inventario-pyme.cl / demo1234. Reejecutar es idempotente para
// el usuario y los productos (se actualizan por SKU); las ventas se vuelven a registrar.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-pyme/internal/application/auth"
	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/application/importer"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/notify"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-pyme/pkg/config"
	"github.com/jhoicas/inventario-pyme/pkg/logger"
)

var catalog = [][]string{
	{"nombre", "sku", "stock_actual", "stock_minimo"},
	{"Arroz Grado 1 1kg", "ARR-001", "120", "20"},
	{"Azúcar Granulada 1kg", "AZU-001", "60", "15"},
	{"Aceite Vegetal 1L", "ACE-001", "18", "12"},
	{"Fideos Spaghetti 400g", "FID-001", "75", "20"},
	{"Harina Sin Polvos 1kg", "HAR-001", "9", "10"},
	{"Café Instantáneo 170g", "CAF-001", "25", "8"},
	{"Té Negro 100 bolsitas", "TE-001", "14", "6"},
	{"Leche Entera 1L", "LEC-001", "40", "24"},
}

// ventas demo: sku -> cantidades
var demoSales = map[string][]int{
	"ARR-001": {3, 5, 2},
	"ACE-001": {4, 2},
	"CAF-001": {1, 1, 2},
	"LEC-001": {6, 6, 4},
}

func main() {
	email, password := "demo@inventario-pyme.cl", "demo1234"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})

	ownerID, apiKey, err := ensureUser(ctx, authUC, userRepo, email, password)
	if err != nil {
		log.Fatal().Err(err).Msg("usuario demo")
	}

	// El seed nunca envía emails reales.
	svc := inventory.NewStockMutationService(postgres.NewTxRunner(pool), userRepo, notify.NewLogNotifier(log.Component("notify")), log.Zerolog(), inventory.ServiceConfig{
		MaxAttempts:  cfg.Tx.MaxAttempts,
		RetryBackoff: cfg.Tx.RetryBackoff,
	})
	im := importer.New(svc, spreadsheet.NewParser(), nil, spreadsheet.NewTemplateBuilder(), log.Component("import"))

	rep, err := im.ImportRows(ctx, ownerID, catalog, true)
	if err != nil {
		log.Fatal().Err(err).Msg("importar catálogo")
	}
	log.Info().
		Int("creados", rep.Summary.Created).
		Int("actualizados", rep.Summary.Updated).
		Int("errores", rep.Summary.Failed).
		Msg("catálogo cargado")

	productRepo := postgres.NewProductRepository(pool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for sku, qtys := range demoSales {
		p, err := productRepo.GetBySKU(ctx, ownerID, sku)
		if err != nil || p == nil {
			log.Warn().Err(err).Str("sku", sku).Msg("producto demo no encontrado")
			continue
		}
		for _, q := range qtys {
			productID, qty := p.ID, q
			g.Go(func() error {
				_, err := svc.RegisterSale(gctx, ownerID, productID, qty)
				if errors.Is(err, domain.ErrInsufficientStock) {
					return nil
				}
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("registrar ventas demo")
	}

	fmt.Printf("Usuario demo: %s\nPassword:     %s\nAPI key:      %s\n", email, password, apiKey)
	fmt.Printf("Productos:    %d\n", len(catalog)-1)
}

func ensureUser(ctx context.Context, uc *auth.AuthUseCase, users *postgres.UserRepo, email, password string) (string, string, error) {
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Almacén Demo", Email: email, Password: password})
	if err == nil {
		return u.ID, u.APIKey, nil
	}
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		return "", "", err
	}
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if existing == nil {
		return "", "", domain.ErrUserNotFound
	}
	return existing.ID, existing.APIKey, nil
}
