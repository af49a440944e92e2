package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-pyme/internal/infrastructure/postgres"
)

// SetupTestDB abre un pool contra TEST_DATABASE_URL y aplica el esquema.
// Omite el test si la variable no está definida o la BD no responde.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse TEST_DATABASE_URL: %v", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("abrir pool de prueba: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("BD de prueba no disponible: %v", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("aplicar esquema: %v", err)
	}
	t.Cleanup(func() { CleanupTestDB(t, pool) })
	return pool
}

// CleanupTestDB vacía las tablas y cierra el pool.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	_, err := pool.Exec(context.Background(), `TRUNCATE stock_movements, sales, products, users CASCADE`)
	if err != nil {
		t.Logf("limpiar tablas: %v", err)
	}
	pool.Close()
}
