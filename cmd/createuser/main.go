package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database"
	"github.com/DMHCAIT/crm-backend-sub002/internal/database/repositories"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	username := flag.String("username", "", "login name")
	email := flag.String("email", "", "email address")
	name := flag.String("name", "", "display name (defaults to username)")
	password := flag.String("password", "", "plain-text password, stored as a bcrypt hash")
	roleFlag := flag.String("role", string(auth.RoleAgent), "one of super_admin, admin, manager, team_leader, agent")
	level := flag.Int("level", 0, "explicit role level; 0 uses the rank table")
	deactivate := flag.String("deactivate", "", "deactivate the user with this username or email instead of creating one")
	flag.Parse()

	var role auth.Role
	if *deactivate == "" {
		if *username == "" || *email == "" || *password == "" {
			fmt.Fprintln(os.Stderr, "--username, --email and --password are required")
			flag.Usage()
			os.Exit(2)
		}

		var err error
		role, err = auth.ParseRole(*roleFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid role: %v\n", err)
			os.Exit(2)
		}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.Logging).WithComponent("createuser")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err.Error())
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			log.Fatal("Failed to run migrations", "error", err.Error())
		}
	}

	users := repositories.NewUserRepository(db)

	if *deactivate != "" {
		if err := users.DeactivateUser(ctx, *deactivate); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				fmt.Fprintf(os.Stderr, "no active user matches %q\n", *deactivate)
				os.Exit(1)
			}
			log.Fatal("Failed to deactivate user", "identifier", *deactivate, "error", err.Error())
		}
		log.AuditLogger("user_deactivated", "", "user:"+*deactivate, "")
		fmt.Printf("deactivated %s\n", *deactivate)
		return
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password", "error", err.Error())
	}

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = *username
	}

	user := &database.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(*username),
		Email:        strings.TrimSpace(*email),
		Name:         displayName,
		PasswordHash: hash,
		Role:         role.String(),
		RoleLevel:    *level,
		IsActive:     true,
	}

	if err := users.Create(ctx, user); err != nil {
		log.Fatal("Failed to create user", "username", user.Username, "error", err.Error())
	}

	log.AuditLogger("user_created", user.ID, "user:"+user.Username, "role="+user.Role)
	fmt.Printf("created user %s (%s) with role %s\n", user.Username, user.ID, user.Role)
}
