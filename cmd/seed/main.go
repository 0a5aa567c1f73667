// seed registra usuarios y productos de demostración a través de los casos de uso
// (mismas validaciones y hash bcrypt que la API). Es idempotente: omite usuarios y productos existentes.
//
// Uso: go run ./cmd/seed [ruta/datos.json]
// Sin argumento usa los datos embebidos en demo.json.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/agrimarket-api/internal/application/auth"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/application/profile"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/infrastructure/postgres"
	"github.com/jhoicas/agrimarket-api/pkg/config"
	"github.com/jhoicas/agrimarket-api/pkg/logger"
)

//go:embed demo.json
var demoData []byte

type seedFile struct {
	Users []seedUser `json:"users"`
}

type seedUser struct {
	dto.RegisterRequest
	DeliveryAddress string                     `json:"delivery_address"`
	Products        []dto.CreateProductRequest `json:"products"`
}

func main() {
	data := demoData
	if len(os.Args) > 1 {
		b, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer datos: %v\n", err)
			os.Exit(1)
		}
		data = b
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar JSON: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		// Login solo se usa para recuperar el id de usuarios ya existentes.
		cfg.JWT.Secret = "seed"
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString(), log); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: 1, Issuer: cfg.JWT.Issuer})
	profileUC := profile.NewProfileUseCase(userRepo)
	productUC := catalog.NewProductUseCase(postgres.NewProductRepository(pool), catalog.NopCache{}, log)

	var users, products int
	for _, u := range seed.Users {
		created, n, err := seedOne(ctx, authUC, profileUC, productUC, u)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Usuario %s: %v\n", u.Username, err)
			os.Exit(1)
		}
		if created {
			users++
		}
		products += n
	}
	fmt.Printf("Seed completo: %d usuarios nuevos, %d productos nuevos\n", users, products)
}

// seedOne registra (o recupera) el usuario, fija su dirección y publica los productos que falten.
func seedOne(ctx context.Context, authUC *auth.AuthUseCase, profileUC *profile.ProfileUseCase, productUC *catalog.ProductUseCase, u seedUser) (bool, int, error) {
	created := true
	user, err := authUC.Register(ctx, u.RegisterRequest)
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		created = false
		login, lerr := authUC.Login(ctx, dto.LoginRequest{Login: u.Username, Password: u.Password})
		if lerr != nil {
			return false, 0, fmt.Errorf("ya existe y no se pudo iniciar sesión: %w", lerr)
		}
		user = &login.User
	} else if err != nil {
		return false, 0, err
	}

	role, err := entity.ParseRole(user.Role)
	if err != nil {
		return false, 0, err
	}
	actor := access.NewActor(user.ID, role)

	if u.DeliveryAddress != "" && role == entity.RoleBuyer {
		addr := u.DeliveryAddress
		if _, err := profileUC.Update(ctx, actor, dto.UpdateProfileRequest{DeliveryAddress: &addr}); err != nil {
			return created, 0, err
		}
	}
	if len(u.Products) == 0 {
		return created, 0, nil
	}

	mine, err := productUC.ListMine(ctx, actor)
	if err != nil {
		return created, 0, err
	}
	existing := make(map[string]bool, len(mine.Items))
	for _, p := range mine.Items {
		existing[p.Name] = true
	}
	n := 0
	for _, p := range u.Products {
		if existing[p.Name] {
			continue
		}
		if _, err := productUC.Create(ctx, actor, p); err != nil {
			return created, n, fmt.Errorf("producto %q: %w", p.Name, err)
		}
		n++
	}
	return created, n, nil
}
