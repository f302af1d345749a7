package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/credential"
)

// Stores or removes the WaniKani token in the OS keyring.
//
//	wanikani-bot-keyring set      # token from WANIKANI_API_KEY or the first line of stdin
//	wanikani-bot-keyring delete
func main() {
	cfg, err := config.Read(config.PathFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	msg, err := run(os.Args[1:], cfg, credential.SystemKeyring(cfg.Keyring), os.Stdin)
	if err != nil {
		log.Fatal(err)
	}
	log.Print(msg)
}

var errUsage = errors.New("usage: wanikani-bot-keyring set|delete")

func run(args []string, cfg *config.Config, open credential.Opener, stdin io.Reader) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}

	switch args[0] {
	case "set":
		token := strings.TrimSpace(cfg.WaniKani.APIKey)
		if token == "" {
			line, err := bufio.NewReader(stdin).ReadString('\n')
			if err != nil && line == "" {
				return "", fmt.Errorf("read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return "", errors.New("token is empty")
		}
		if err := credential.Store(open, cfg.Keyring.Key, token); err != nil {
			return "", err
		}
		return fmt.Sprintf("keyring: stored %q for service %q", cfg.Keyring.Key, cfg.Keyring.Service), nil
	case "delete":
		if err := credential.Remove(open, cfg.Keyring.Key); err != nil {
			return "", err
		}
		return fmt.Sprintf("keyring: removed %q", cfg.Keyring.Key), nil
	default:
		return "", fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}
