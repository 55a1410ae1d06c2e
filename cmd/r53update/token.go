package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// cloudflareToken reads the API token from path. A missing file is created
// interactively when stdin is a terminal.
func cloudflareToken(ctx context.Context, path string, stdin *os.File, logger *logrus.Entry) (string, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Infof("token file \"%s\" does not exist", path)
		if err := setupToken(ctx, path, stdin, logger); err != nil {
			return "", fmt.Errorf("setup: %w", err)
		}
	}
	if err := verifyPermissions(path); err != nil {
		return "", err
	}
	token, err := readToken(path)
	if err != nil {
		return "", err
	}
	logger.Debug("successfully read token from token file")
	return token, nil
}

func setupToken(ctx context.Context, path string, stdin *os.File, logger *logrus.Entry) error {
	if stdin == nil || !term.IsTerminal(int(stdin.Fd())) {
		return fmt.Errorf("no token file at \"%s\" and stdin is not a terminal", path)
	}
	fmt.Fprintf(os.Stderr, "Enter Cloudflare API Token: ")
	b, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("error reading from stdin: %w", err)
	}
	token := strings.TrimSpace(string(b))

	api, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return fmt.Errorf("error creating api client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	logger.Info("verifying token...")
	result, err := api.VerifyAPIToken(ctx)
	if err != nil {
		return fmt.Errorf("unable to verify api token: %w", err)
	}
	if result.Status != "active" {
		return fmt.Errorf("expected api token status to be \"active\"; got \"%s\"", result.Status)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("unable to create \"%s\": %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, token); err != nil {
		return fmt.Errorf("error writing \"%s\": %w", path, err)
	}
	logger.Infof("token written to \"%s\"", path)
	return nil
}

func readToken(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error reading token: %w", err)
	}
	defer f.Close()

	line, _, err := bufio.NewReader(f).ReadLine()
	if err != nil {
		return "", fmt.Errorf("error reading line: %w", err)
	}
	token := strings.TrimSpace(string(line))
	if token == "" {
		return "", fmt.Errorf("token file \"%s\" is empty", path)
	}
	return token, nil
}

func verifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking token file permissions: %w", err)
	}

	perms := info.Mode().Perm()
	// 0400 is accepted too; secret managers often mount files read-only.
	if perms != 0600 && perms != 0400 {
		return fmt.Errorf("invalid permissions for \"%s\": expected file permissions \"-rw-------\"; found \"%s\"", path, perms)
	}
	return nil
}
