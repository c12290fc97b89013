// waggle-user manages principals in the waggle directory database.
//
//	waggle-user create --username ada_l --nickname Ada [--admin] [--generate-password]
//	waggle-user delete --id 01J...
//
// The password is prompted for on a terminal and read as one line from
// stdin otherwise. The pepper file must be the one the service uses, or
// the stored hash will never verify.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/service"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/internal/auth/store/drivers/sqlite"
	"github.com/wagglex2/waggle/pkg/cryptox"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("a command is required")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "create":
		return runCreate(ctx, rest, stdin, stdout, stderr)
	case "delete":
		return runDelete(ctx, rest, stdout, stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: waggle-user <create|delete> [flags]")
	fmt.Fprintln(w, "run 'waggle-user <command> --help' for the flags of a command")
}

// storeFlags are shared by every command.
type storeFlags struct {
	databaseFile string
	pepperFile   string
}

func (f *storeFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&f.databaseFile, "db", envOr("AUTH_DATABASE_FILE", "waggle.db"), "path to the directory database")
	fs.StringVar(&f.pepperFile, "pepper", envOr("AUTH_PEPPER_FILE", "pepper"), "path to the password pepper file")
}

func (f *storeFlags) open() (*sqlite.Store, error) {
	cryptox.SetPepperPath(f.pepperFile)

	db, err := sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", f.databaseFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func runCreate(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		sf       storeFlags
		username string
		nickname string
		admin    bool
		generate bool
	)

	fs := pflag.NewFlagSet("waggle-user create", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	sf.add(fs)
	fs.StringVarP(&username, "username", "u", "", "login name (4-20 letters, digits or _)")
	fs.StringVarP(&nickname, "nickname", "n", "", "display name (2-10 characters)")
	fs.BoolVar(&admin, "admin", false, "grant "+domain.RoleAdmin)
	fs.BoolVar(&generate, "generate-password", false, "generate a password and print it instead of reading one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if username == "" || nickname == "" {
		return errors.New("--username and --nickname are required")
	}

	var password string
	var err error
	if generate {
		password, err = cryptox.GeneratePassword()
	} else {
		password, err = readPassword(stdin, stderr)
	}
	if err != nil {
		return err
	}

	role := domain.RoleUser
	if admin {
		role = domain.RoleAdmin
	}

	db, err := sf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	users := &service.UserService{Store: db}
	p, err := users.CreatePrincipal(ctx, service.NewPrincipal{
		Username: username,
		Nickname: nickname,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("create principal: %w", err)
	}

	fmt.Fprintf(stdout, "created %s (%s) id=%s\n", p.Username, p.Role, p.ID)
	if generate {
		fmt.Fprintf(stdout, "password: %s\n", password)
	}
	return nil
}

func runDelete(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		sf storeFlags
		id string
	)

	fs := pflag.NewFlagSet("waggle-user delete", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	sf.add(fs)
	fs.StringVar(&id, "id", "", "principal id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		return errors.New("--id is required")
	}

	db, err := sf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	users := &service.UserService{Store: db}
	if err := users.DeletePrincipal(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no principal with id %s", id)
		}
		return fmt.Errorf("delete principal: %w", err)
	}

	fmt.Fprintf(stdout, "deleted %s\n", id)
	return nil
}

// readPassword prompts twice with echo disabled when stdin is a terminal.
// Piped input is read as a single line.
func readPassword(stdin io.Reader, stderr io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())

		fmt.Fprint(stderr, "Password: ")
		first, err := term.ReadPassword(fd)
		fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		fmt.Fprint(stderr, "Confirm password: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("reading password confirmation: %w", err)
		}

		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is empty")
	}
	return password, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
