// Command manage performs administrative tasks against the API database:
// creating users, granting staff roles and minting bearer tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"little-lemon-go/config"
	"little-lemon-go/database"
	"little-lemon-go/models"
	"little-lemon-go/services"
	"little-lemon-go/utils"
)

var groupFlagValues = map[string]string{
	"manager":       models.GroupManager,
	"delivery-crew": models.GroupDeliveryCrew,
}

const usage = `usage: manage <command> [flags]

commands:
  createuser -username NAME -email EMAIL -password PASSWORD [-staff]
  addgroup   -username NAME -group manager|delivery-crew
  token      -username NAME [-password PASSWORD]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "manage:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("no command given")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURI, gormlogger.Warn)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedRoleGroups(ctx, db); err != nil {
		return err
	}

	switch args[0] {
	case "createuser":
		return createUser(ctx, db, args[1:], out)
	case "addgroup":
		return addGroup(ctx, db, args[1:], out)
	case "token":
		return mintToken(ctx, db, cfg, args[1:], out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func createUser(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "plain text password")
	staff := fs.Bool("staff", false, "grant the administrative flag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("createuser: -username and -password are required")
	}

	user := models.User{
		Username: strings.TrimSpace(*username),
		Email:    *email,
		IsStaff:  *staff,
	}
	if err := user.HashPassword(*password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %q already exists", user.Username)
		}
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func addGroup(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("addgroup", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	groupFlag := fs.String("group", "", "manager or delivery-crew")
	if err := fs.Parse(args); err != nil {
		return err
	}

	group, ok := groupFlagValues[*groupFlag]
	if !ok {
		return fmt.Errorf("addgroup: unknown group %q", *groupFlag)
	}

	user, err := services.NewRosterService(db).Add(ctx, group, *username)
	if err != nil {
		return fmt.Errorf("addgroup: %w", err)
	}

	fmt.Fprintf(out, "added %s to %s\n", user.Username, group)
	return nil
}

func mintToken(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "verify this password before issuing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", *username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("token: user %q not found", *username)
		}
		return fmt.Errorf("token: %w", err)
	}
	if *password != "" {
		if err := user.CheckPassword(*password); err != nil {
			return errors.New("token: invalid password")
		}
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	fmt.Fprintln(out, token)
	return nil
}
