package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	tenantapp "orchestrai-web/internal/application/tenant"
	"orchestrai-web/internal/config"
	"orchestrai-web/internal/domain/entity"
	"orchestrai-web/internal/domain/repository"
	"orchestrai-web/internal/infrastructure/persistence/postgres"
	"orchestrai-web/internal/wire"
	"orchestrai-web/pkg/errors"
)

var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Migrate the tenants table and seed demo tenants",
	RunE:  runSeed,
}

var statusCmd = &cobra.Command{
	Use:   "tenant-status <slug> <active|suspended|deleted>",
	Short: "Change a tenant's status and drop its cached record",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// openDirectory 加载配置并初始化租户目录
func openDirectory(ctx context.Context) (*wire.DirectoryLayer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	layer, cleanup, err := wire.InitializeDirectoryOnly(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize data layer: %w", err)
	}
	return layer, cleanup, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Println("Starting tenant bootstrap...")

	layer, cleanup, err := openDirectory(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := layer.PgClient.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate tenants table: %w", err)
	}

	// 在同一事务中写入演示租户
	txMgr := postgres.NewTxManager(layer.PgClient)
	if err := seedTenants(ctx, txMgr, layer.TenantRepo, tenantapp.DemoTenants); err != nil {
		return fmt.Errorf("seed tenants: %w", err)
	}

	fmt.Println("Bootstrap completed successfully.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	layer, cleanup, err := openDirectory(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	tenant, err := setTenantStatus(ctx, layer.Directory, layer.TenantRepo, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Tenant %s (%s) is now %s\n", tenant.Slug, tenant.ID, tenant.Status)
	return nil
}

// seedTenants 逐个确保演示租户存在，任一失败则整体回滚
func seedTenants(ctx context.Context, tx repository.Transactor, repo repository.TenantRepository, seeds []tenantapp.SeedTenant) error {
	return tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, s := range seeds {
			tenant, created, err := tenantapp.EnsureTenant(ctx, repo, s)
			if err != nil {
				return fmt.Errorf("seed tenant %s: %w", s.Slug, err)
			}
			if created {
				fmt.Printf("Tenant %s created with ID: %s\n", s.Slug, tenant.ID)
			} else {
				fmt.Printf("Tenant %s already exists with ID: %s\n", s.Slug, tenant.ID)
			}
		}
		return nil
	})
}

// setTenantStatus 按 Slug 更新租户状态，经由目录清理缓存
func setTenantStatus(ctx context.Context, dir *tenantapp.Directory, repo repository.TenantRepository, slug, status string) (*entity.Tenant, error) {
	st, ok := entity.ParseTenantStatus(status)
	if !ok {
		return nil, errors.ErrInvalidParam.WithDetail("unknown tenant status: " + status)
	}

	tenant, err := repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to get tenant")
	}
	if tenant == nil {
		return nil, errors.ErrTenantNotFound.WithDetail(slug)
	}

	if err := dir.UpdateStatus(ctx, tenant.ID, st); err != nil {
		return nil, err
	}
	tenant.Status = st
	return tenant, nil
}
