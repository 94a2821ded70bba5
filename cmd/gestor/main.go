package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/participadf/ouvidoria/internal/db"
	"github.com/participadf/ouvidoria/internal/repo"
	"github.com/participadf/ouvidoria/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	// Cadastro e bloqueio não tocam em tokens: Redis e JWT ficam de fora.
	svc := service.NewAuthService(repo.New(pool), nil, nil)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, svc, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar gestor")
		}
	case "disable", "enable":
		if err := runSetAtivo(ctx, svc, args, cmd == "enable"); err != nil {
			log.Fatal().Err(err).Msgf("falha ao executar %s", cmd)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "gestor CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  gestor create --email admin@cgdf.gov.br --nome \"Administrador\" --orgao \"Controladoria-Geral do Distrito Federal\" [--senha ...]")
	fmt.Fprintln(os.Stderr, "  gestor disable --email fulano@df.gov.br")
	fmt.Fprintln(os.Stderr, "  gestor enable --email fulano@df.gov.br")
}

func runCreate(ctx context.Context, svc *service.AuthService, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email string
		nome  string
		orgao string
		senha string
	)
	fs.StringVar(&email, "email", "", "e-mail do gestor")
	fs.StringVar(&nome, "nome", "", "nome completo")
	fs.StringVar(&orgao, "orgao", "", "órgão de lotação")
	fs.StringVar(&senha, "senha", "", "senha (omitir para digitar)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if senha == "" {
		var err error
		senha, err = promptPassword()
		if err != nil {
			return err
		}
	}

	gestor, err := svc.CreateGestor(ctx, nome, email, senha, orgao)
	if err != nil {
		return err
	}

	log.Info().Str("id", gestor.ID).Str("email", gestor.Email).Str("orgao", gestor.Orgao).Msg("gestor criado")
	return nil
}

func runSetAtivo(ctx context.Context, svc *service.AuthService, args []string, ativo bool) error {
	fs := flag.NewFlagSet("ativo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var email string
	fs.StringVar(&email, "email", "", "e-mail do gestor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" {
		return errors.New("--email é obrigatório")
	}

	if err := svc.SetGestorAtivo(ctx, email, ativo); err != nil {
		return err
	}

	log.Info().Str("email", email).Bool("ativo", ativo).Msg("gestor atualizado")
	return nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("informe --senha quando a entrada não for um terminal")
	}

	fmt.Fprint(os.Stderr, "Senha: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Confirme a senha: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("as senhas não conferem")
	}
	return string(first), nil
}
