// cmd/cardctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vaccard/internal/api"
	"vaccard/internal/common/auth"
	"vaccard/internal/common/config"
	"vaccard/internal/common/database"
	commonhttp "vaccard/internal/common/http"
	"vaccard/internal/common/logger"
	"vaccard/internal/common/observability"
	"vaccard/internal/engine/cardgrid"
	"vaccard/internal/engine/personsearch"
	"vaccard/internal/engine/recordflow"
	"vaccard/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	tokens := auth.NewMemoryTokenStore()
	transport := commonhttp.NewClient(
		cfg.API.BaseURL,
		time.Duration(cfg.API.RequestTimeout)*time.Millisecond,
		tokens,
	).WithObservability(obs)
	client := api.NewClient(transport, tokens, log)

	var cache cardgrid.SnapshotCache
	gridCfg := cardgrid.DefaultConfig()
	if cfg.Cache.Enabled {
		redisClient, err := database.NewRedis(cfg.Cache)
		if err != nil {
			zapLog.Fatal("redis init failed", zap.Error(err))
		}
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx); err != nil {
			cancel()
			zapLog.Fatal("redis unreachable", zap.Error(err))
		}
		cancel()

		cache = redisClient
		gridCfg.CacheEnabled = true
		gridCfg.CacheTTL = time.Duration(cfg.Cache.TTL) * time.Second
	}

	grids, err := cardgrid.NewService(gridCfg, client, cache, log)
	if err != nil {
		zapLog.Fatal("cardgrid init failed", zap.Error(err))
	}

	ctx := context.Background()

	// Commands against the record keeper need a session; auth commands
	// manage their own.
	command := os.Args[1]
	if command != "register" && command != "help" {
		if cfg.Auth.Username == "" {
			zapLog.Fatal("auth.username is required, set VACCARD_AUTH_USERNAME or configs/config.yaml")
		}
		if err := client.Login(ctx, cfg.Auth.Username, cfg.Auth.Password); err != nil {
			zapLog.Fatal("login failed", zap.Error(err))
		}
		defer client.Logout(ctx)
	}

	switch command {
	case "card":
		cmd := flag.NewFlagSet("card", flag.ExitOnError)
		personID := cmd.Int64("person", 0, "Person ID")
		category := cmd.String("category", "", "Vaccine category filter (ROUTINE, SEASONAL, TRAVEL, SPECIAL_GROUPS)")
		cmd.Parse(os.Args[2:])
		runCard(ctx, grids, *personID, *category)

	case "add":
		cmd := flag.NewFlagSet("add", flag.ExitOnError)
		personID := cmd.Int64("person", 0, "Person ID")
		vaccineID := cmd.Int64("vaccine", 0, "Vaccine ID")
		dose := cmd.String("dose", "", "Dose type (e.g. FIRST_DOSE)")
		date := cmd.String("date", "", "Application date, YYYY-MM-DD")
		category := cmd.String("category", "", "Vaccine category filter")
		cmd.Parse(os.Args[2:])
		runAdd(ctx, grids, client, log, *personID, *vaccineID, *dose, *date, *category)

	case "revoke":
		cmd := flag.NewFlagSet("revoke", flag.ExitOnError)
		personID := cmd.Int64("person", 0, "Person ID")
		vaccineID := cmd.Int64("vaccine", 0, "Vaccine ID")
		dose := cmd.String("dose", "", "Dose type of the record to revoke")
		cmd.Parse(os.Args[2:])
		runRevoke(ctx, grids, client, log, *personID, *vaccineID, *dose)

	case "persons":
		cmd := flag.NewFlagSet("persons", flag.ExitOnError)
		page := cmd.Int("page", 0, "Listing page index")
		cpf := cmd.String("cpf", "", "Exact CPF lookup instead of listing")
		cmd.Parse(os.Args[2:])
		runPersons(ctx, cfg, client, log, *page, *cpf)

	case "person-create":
		cmd := flag.NewFlagSet("person-create", flag.ExitOnError)
		name := cmd.String("name", "", "Full name")
		cpf := cmd.String("cpf", "", "CPF, 11 digits")
		dob := cmd.String("dob", "", "Date of birth, YYYY-MM-DD")
		sex := cmd.String("sex", "", "MALE or FEMALE")
		cmd.Parse(os.Args[2:])
		person, err := client.CreatePerson(ctx, models.PersonRequest{
			Name: *name, CPF: *cpf, DateOfBirth: *dob, Sex: models.Sex(*sex),
		})
		exitOnError(err)
		printJSON(person)

	case "person-delete":
		cmd := flag.NewFlagSet("person-delete", flag.ExitOnError)
		personID := cmd.Int64("person", 0, "Person ID")
		cmd.Parse(os.Args[2:])
		exitOnError(client.DeletePerson(ctx, *personID))
		grids.Invalidate(ctx, *personID)
		fmt.Printf("deleted person %d\n", *personID)

	case "vaccines":
		vaccines, err := client.ListVaccines(ctx)
		exitOnError(err)
		printJSON(vaccines)

	case "vaccine-create":
		cmd := flag.NewFlagSet("vaccine-create", flag.ExitOnError)
		name := cmd.String("name", "", "Vaccine name")
		category := cmd.String("category", "", "Category")
		doses := cmd.String("doses", "", "Comma-separated dose schedule (e.g. FIRST_DOSE,SECOND_DOSE)")
		cmd.Parse(os.Args[2:])
		vaccine, err := client.CreateVaccine(ctx, models.VaccineRequest{
			Name:         *name,
			Category:     models.VaccineCategory(*category),
			DoseSchedule: parseDoses(*doses),
		})
		exitOnError(err)
		printJSON(vaccine)

	case "register":
		cmd := flag.NewFlagSet("register", flag.ExitOnError)
		username := cmd.String("user", "", "Username")
		password := cmd.String("pass", "", "Password")
		cmd.Parse(os.Args[2:])
		exitOnError(client.Register(ctx, *username, *password))
		fmt.Printf("registered %s\n", *username)

	case "help":
		help()

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		help()
		os.Exit(1)
	}
}

func runCard(ctx context.Context, grids *cardgrid.Service, personID int64, category string) {
	grid, err := grids.BuildGrid(ctx, cardgrid.Input{
		PersonID: personID,
		Category: parseCategory(category),
	})
	exitOnError(err)
	printGrid(grid)
}

func runAdd(ctx context.Context, grids *cardgrid.Service, client *api.Client, log logger.Logger, personID, vaccineID int64, dose, date, category string) {
	w := recordflow.NewWorkflow(personID, grids, client, log)
	if cat := parseCategory(category); cat != nil {
		exitOnError(w.Load(ctx))
		exitOnError(w.SetCategory(ctx, cat))
	} else {
		exitOnError(w.Load(ctx))
	}

	doseType, err := models.ParseDoseType(dose)
	exitOnError(err)
	exitOnError(w.OpenAdd(vaccineID, doseType))
	exitOnError(w.SubmitAdd(ctx, date))
	printGrid(w.Grid())
}

func runRevoke(ctx context.Context, grids *cardgrid.Service, client *api.Client, log logger.Logger, personID, vaccineID int64, dose string) {
	w := recordflow.NewWorkflow(personID, grids, client, log)
	exitOnError(w.Load(ctx))

	doseType, err := models.ParseDoseType(dose)
	exitOnError(err)
	exitOnError(w.OpenViewDelete(vaccineID, doseType))
	exitOnError(w.ConfirmDelete(ctx))
	printGrid(w.Grid())
}

func runPersons(ctx context.Context, cfg *config.Config, client *api.Client, log logger.Logger, page int, cpf string) {
	browser, err := personsearch.NewBrowser(&personsearch.Config{
		PageSize: cfg.Listing.PageSize,
		Sort:     cfg.Listing.Sort,
	}, client, log)
	exitOnError(err)

	if cpf != "" {
		exitOnError(browser.SearchCPF(ctx, cpf))
	} else {
		exitOnError(browser.GoToPage(ctx, page))
	}

	view := browser.View()
	printJSON(view.Page)
}

func printGrid(grid *cardgrid.Grid) {
	fmt.Printf("Card for %s (CPF %s)\n", grid.Person.Name, grid.Person.CPF)
	for _, v := range grid.Vaccines {
		fmt.Printf("\n%s [%s]\n", v.VaccineName, v.Category)
		for _, cell := range v.Doses {
			line := fmt.Sprintf("  %-12s %s", cell.DoseType.Label(), cell.Status)
			if cell.Taken() {
				line += fmt.Sprintf(" (record %d, %s)", *cell.RecordID, *cell.ApplicationDate)
			}
			fmt.Println(line)
		}
	}
	for _, violation := range grid.Violations {
		fmt.Printf("\nWARNING: %s\n", violation)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	exitOnError(err)
	fmt.Println(string(data))
}

func parseCategory(s string) *models.VaccineCategory {
	if s == "" {
		return nil
	}
	category, err := models.ParseVaccineCategory(s)
	exitOnError(err)
	return &category
}

func parseDoses(s string) []models.DoseType {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]models.DoseType, 0, len(parts))
	for _, p := range parts {
		dose, err := models.ParseDoseType(strings.TrimSpace(p))
		exitOnError(err)
		out = append(out, dose)
	}
	return out
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println(`cardctl - vaccination card grid engine

Usage:
  cardctl card -person <id> [-category <cat>]        Show a person's card grid
  cardctl add -person <id> -vaccine <id> -dose <d> -date <yyyy-mm-dd>
                                                     Register an administration
  cardctl revoke -person <id> -vaccine <id> -dose <d>
                                                     Revoke an administration record
  cardctl persons [-page <n>] [-cpf <cpf>]           List persons or look one up by CPF
  cardctl person-create -name <n> -cpf <c> -dob <d> -sex <s>
  cardctl person-delete -person <id>
  cardctl vaccines                                   List the vaccine catalog
  cardctl vaccine-create -name <n> -category <c> -doses <d1,d2,...>
  cardctl register -user <u> -pass <p>               Create an operator account

Credentials come from auth.username/auth.password in configs/config.yaml or
the VACCARD_AUTH_USERNAME / VACCARD_AUTH_PASSWORD environment variables.`)
}
