package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/engine"
	"storefront/internal/localstore"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	"storefront/internal/remote"
)

const usage = `usage: cartctl [-state dir] [-addr url] <command> [args]

commands:
  products                list the catalog
  show                    print the current cart
  add <productId> [qty]   add a product (quantity defaults to 1)
  set <productId> <qty>   set a line's quantity (0 removes it)
  remove <productId>      remove a line
  clear                   empty the cart
  quote [couponCode]      price the cart, optionally with a coupon
  login <email> <pass>    log in and merge the guest cart
`

type session struct {
	Token       string `json:"token"`
	AnonymousID string `json:"anonymousId"`
	CustomerID  string `json:"customerId,omitempty"`
}

func main() {
	var (
		stateDir string
		addr     string
	)
	flag.StringVar(&stateDir, "state", defaultStateDir(), "directory for session and cart state")
	flag.StringVar(&addr, "addr", "http://localhost:8080", "cart API base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New("cartctl", cfg.LogLevel, "console")

	ctx := context.Background()
	if err := run(ctx, cfg, logger, stateDir, addr, args); err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, stateDir, addr string, args []string) error {
	sess, err := ensureSession(ctx, stateDir, addr)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	client := remote.New(addr, sess.Token)
	mgr, err := buildEngine(cfg, logger, stateDir, client, sess)
	if err != nil {
		return err
	}
	mgr.Initialize(ctx, identityFor(sess))

	switch cmd, rest := args[0], args[1:]; cmd {
	case "products":
		products, err := client.Products(ctx)
		if err != nil {
			return err
		}
		return printJSON(products)

	case "show":
		return printJSON(mgr.Snapshot())

	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("add: product id required")
		}
		quantity := 1
		if len(rest) > 1 {
			quantity, err = strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("add: bad quantity %q", rest[1])
			}
		}
		product, err := client.Product(ctx, rest[0])
		if err != nil {
			return fmt.Errorf("resolve product: %w", err)
		}
		mgr.AddItem(ctx, *product, quantity)
		return printJSON(mgr.Snapshot())

	case "set":
		if len(rest) < 2 {
			return fmt.Errorf("set: product id and quantity required")
		}
		quantity, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("set: bad quantity %q", rest[1])
		}
		mgr.UpdateQuantity(ctx, rest[0], quantity)
		return printJSON(mgr.Snapshot())

	case "remove":
		if len(rest) < 1 {
			return fmt.Errorf("remove: product id required")
		}
		mgr.RemoveItem(ctx, rest[0])
		return printJSON(mgr.Snapshot())

	case "clear":
		mgr.Clear(ctx)
		return printJSON(mgr.Snapshot())

	case "quote":
		if len(rest) > 0 {
			if _, err := mgr.ApplyCoupon(ctx, rest[0]); err != nil {
				return fmt.Errorf("coupon %q: %w", rest[0], err)
			}
		}
		return printJSON(mgr.Quote())

	case "login":
		if len(rest) < 2 {
			return fmt.Errorf("login: email and password required")
		}
		token, customer, err := client.Login(ctx, rest[0], rest[1])
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		sess.Token = token
		sess.CustomerID = customer.ID
		if err := saveSession(stateDir, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		// Rebuild against the customer token; the server already merged the
		// guest cart during login.
		authed := client.WithToken(token)
		mgr, err = buildEngine(cfg, logger, stateDir, authed, sess)
		if err != nil {
			return err
		}
		mgr.Login(ctx, domain.Authenticated(customer.ID, token))
		return printJSON(mgr.Snapshot())

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func buildEngine(cfg config.Config, logger zerolog.Logger, stateDir string, client *remote.Client, sess *session) (*engine.Manager, error) {
	var store localstore.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = localstore.NewRedisStore(rdb, sess.AnonymousID, cfg.RedisCartTTL, logger)
	} else {
		store = localstore.NewFileStore(filepath.Join(stateDir, "cart.json"), logger)
	}

	return engine.New(engine.Options{
		Store:   store,
		Remote:  client,
		Coupons: client,
		Policy: pricing.Policy{
			FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
			FlatShippingFeeCents:       cfg.FlatShippingFeeCents,
			TaxRate:                    decimal.NewFromFloat(cfg.TaxRatePercent).Div(decimal.NewFromInt(100)),
		},
		Logger: logger,
	})
}

func identityFor(sess *session) domain.Identity {
	if sess.CustomerID != "" {
		return domain.Authenticated(sess.CustomerID, sess.Token)
	}
	return domain.Anonymous(sess.AnonymousID)
}

func ensureSession(ctx context.Context, stateDir, addr string) (*session, error) {
	path := filepath.Join(stateDir, "session.json")
	raw, err := os.ReadFile(path)
	if err == nil {
		var sess session
		if err := json.Unmarshal(raw, &sess); err == nil && sess.Token != "" {
			return &sess, nil
		}
	}

	token, anonymousID, err := remote.New(addr, "").Session(ctx)
	if err != nil {
		return nil, err
	}
	sess := &session{Token: token, AnonymousID: anonymousID}
	if err := saveSession(stateDir, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func saveSession(stateDir string, sess *session) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateDir, "session.json"), raw, 0o600)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
