package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"subbridge/internal/config"
	"subbridge/internal/core"
	"subbridge/internal/log"
	"subbridge/internal/services"
	"subbridge/internal/wallos"
)

const usage = `Usage: subbridge <command> [flags]

Commands:
  list             list subscriptions
  categories       list categories
  create           create a subscription
  edit             edit a subscription
  delete-category  delete a category
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	// Best-effort .env loading, matching local development setups.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}

	cfg := config.Load()
	if cfg.Username != "" && cfg.Password == "" && cfg.APIKey == "" {
		password, err := promptPassword(stdout)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cfg.Password = password
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := wallos.New(cfg, nil, logger)
	resolver := services.NewResolver(client, logger, cfg.MemberEmailDomain)
	submitter := services.NewSubmitter(client, resolver, logger)

	ctx := context.Background()

	switch args[0] {
	case "list":
		return cmdList(ctx, args[1:], client, stdout, stderr)
	case "categories":
		return cmdCategories(ctx, client, stdout)
	case "create":
		return cmdCreate(ctx, args[1:], submitter, stdout, stderr)
	case "edit":
		return cmdEdit(ctx, args[1:], submitter, stdout, stderr)
	case "delete-category":
		return cmdDeleteCategory(ctx, args[1:], client, stdout, stderr)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func promptPassword(stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Password: ")
	defer fmt.Fprintln(stdout)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		return strings.TrimSpace(string(b)), err
	}
	var line string
	_, err := fmt.Scanln(&line)
	return strings.TrimSpace(line), err
}

func cmdList(ctx context.Context, args []string, client *wallos.Client, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	state := fs.String("state", "", "filter by state: active or inactive")
	sort := fs.String("sort", "", "sort key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := core.SubscriptionFilter{Sort: *sort}
	switch *state {
	case "":
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	default:
		return fmt.Errorf("invalid -state %q: must be active or inactive", *state)
	}

	subs, err := client.Subscriptions(ctx, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCYCLE\tNEXT PAYMENT")
	for _, s := range subs {
		cycle := s.Cycle.String()
		if s.Frequency > 1 {
			cycle = fmt.Sprintf("%s x%d", cycle, s.Frequency)
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n", s.ID, s.Name, s.Price, cycle, s.NextPayment)
	}
	return w.Flush()
}

func cmdCategories(ctx context.Context, client *wallos.Client, stdout io.Writer) error {
	cats, err := client.Categories(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tIN USE")
	for _, c := range cats {
		fmt.Fprintf(w, "%d\t%s\t%v\n", c.ID, c.Name, c.InUse)
	}
	return w.Flush()
}

func cmdCreate(ctx context.Context, args []string, submitter *services.Submitter, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "subscription name (required)")
	price := fs.Float64("price", 0, "subscription price (required)")
	currency := fs.String("currency", "", "currency code, e.g. EUR")
	category := fs.String("category", "", "category name")
	payment := fs.String("payment", "", "payment method name")
	payer := fs.String("payer", "", "payer name")
	period := fs.String("period", "", "billing period, e.g. monthly, quarterly, '2 weeks'")
	frequency := fs.Int("frequency", 0, "billing frequency multiplier")
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	next := fs.String("next", "", "next payment date (YYYY-MM-DD)")
	noRenew := fs.Bool("no-renew", false, "disable auto-renew")
	notes := fs.String("notes", "", "notes")
	siteURL := fs.String("url", "", "subscription URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	in := services.CreateInput{
		Name:              *name,
		Price:             *price,
		CurrencyCode:      *currency,
		CategoryName:      *category,
		PaymentMethodName: *payment,
		PayerName:         *payer,
		BillingPeriod:     *period,
		Frequency:         *frequency,
		StartDate:         *start,
		NextPayment:       *next,
		Notes:             *notes,
		URL:               *siteURL,
	}
	if *noRenew {
		renew := false
		in.AutoRenew = &renew
	}

	result, err := submitter.CreateSubscription(ctx, in)
	if err != nil {
		return err
	}
	if result.Subscription != nil {
		fmt.Fprintf(stdout, "Created subscription %d (%s), next payment %s\n",
			result.Subscription.ID, result.Subscription.Name, result.Subscription.NextPayment)
	}
	return nil
}

func cmdEdit(ctx context.Context, args []string, submitter *services.Submitter, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	id := fs.Int("id", 0, "subscription id (required)")
	name := fs.String("name", "", "new name")
	price := fs.Float64("price", 0, "new price")
	currency := fs.String("currency", "", "new currency code")
	category := fs.String("category", "", "new category name")
	payment := fs.String("payment", "", "new payment method name")
	payer := fs.String("payer", "", "new payer name")
	period := fs.String("period", "", "new billing period")
	start := fs.String("start", "", "new start date (YYYY-MM-DD)")
	next := fs.String("next", "", "new next payment date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "new notes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	in := services.EditInput{ID: *id}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.Name = name
		case "price":
			in.Price = price
		case "currency":
			in.CurrencyCode = currency
		case "category":
			in.CategoryName = category
		case "payment":
			in.PaymentMethodName = payment
		case "payer":
			in.PayerName = payer
		case "period":
			in.BillingPeriod = period
		case "start":
			in.StartDate = start
		case "next":
			in.NextPayment = next
		case "notes":
			in.Notes = notes
		}
	})

	result, err := submitter.EditSubscription(ctx, in)
	if err != nil {
		return err
	}
	if result.Subscription != nil {
		fmt.Fprintf(stdout, "Updated subscription %d (%s)\n",
			result.Subscription.ID, result.Subscription.Name)
	}
	return nil
}

func cmdDeleteCategory(ctx context.Context, args []string, client *wallos.Client, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("delete-category", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.Int("id", 0, "category id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("missing required flag: -id")
	}
	if err := client.DeleteCategory(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted category %d\n", *id)
	return nil
}
