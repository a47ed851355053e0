package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/yourorg/servicetracker/internal/identity"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "business":
		handleBusiness(args)
	case "customer":
		handleCustomer(args)
	case "service":
		handleService(args)
	case "dashboard":
		showDashboard(args)
	case "token":
		mintToken(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker auth <signup|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "signup":
		signup(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleBusiness(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker business <show|onboard|check>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "show":
		showBusiness()
	case "onboard":
		onboardBusiness(args[1:])
	case "check":
		checkProfile()
	default:
		fmt.Printf("unknown business command: %s\n", subCmd)
	}
}

func handleCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker customer <list|create|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listCustomers()
	case "create":
		createCustomer(args[1:])
	case "delete":
		deleteCustomer(args[1:])
	default:
		fmt.Printf("unknown customer command: %s\n", subCmd)
	}
}

func handleService(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker service <create|status|updates>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "create":
		createService(args[1:])
	case "status":
		updateServiceStatus(args[1:])
	case "updates":
		listServiceUpdates(args[1:])
	default:
		fmt.Printf("unknown service command: %s\n", subCmd)
	}
}

// Auth commands
func signup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"name":     *name,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/signup", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Signed up: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Signup failed: %v\n", result)
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	if len(token) > 20 {
		token = token[:20]
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token)
}

// Business commands
func showBusiness() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/user/business", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		fmt.Println("No business yet. Run: servicetracker business onboard -name <name>")
		return
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

func onboardBusiness(args []string) {
	fs := flag.NewFlagSet("onboard", flag.ExitOnError)
	name := fs.String("name", "", "business name")
	businessType := fs.String("type", "", "business type")
	teamSize := fs.String("team", "", "team size")
	goal := fs.String("goal", "", "primary goal")

	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: name is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"businessName": *name,
		"businessType": *businessType,
		"teamSize":     *teamSize,
		"primaryGoal":  *goal,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/user/business", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		if biz, ok := result["business"].(map[string]interface{}); ok {
			fmt.Printf("✓ Business created: %v (subdomain: %v)\n", biz["name"], biz["subdomain"])
		}
	} else {
		fmt.Printf("✗ Onboarding failed: %v\n", result)
	}
}

func checkProfile() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/user/check", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

// Customer commands
func listCustomers() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/customers", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Customers []map[string]interface{} `json:"customers"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range result.Customers {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", c["id"], c["name"], c["email"], c["phone"])
	}
	w.Flush()
}

func createCustomer(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")

	fs.Parse(args)

	if *name == "" || *email == "" {
		fmt.Println("Error: name and email are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name, "email": *email, "phone": *phone}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/customers/create", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Customer created: %s\n", *name)
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func deleteCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker customer delete <customer-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/customers/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Println("✓ Customer deleted")
	} else {
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Service commands
func createService(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "service title")
	description := fs.String("desc", "", "service description")
	customerName := fs.String("customer", "", "customer name")
	customerEmail := fs.String("email", "", "customer email")
	priority := fs.String("priority", "", "LOW, MEDIUM, HIGH or URGENT")

	fs.Parse(args)

	if *title == "" || *customerName == "" || *customerEmail == "" {
		fmt.Println("Error: title, customer, and email are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"title":         *title,
		"description":   *description,
		"customerName":  *customerName,
		"customerEmail": *customerEmail,
		"priority":      *priority,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/services/create", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		if svc, ok := result["service"].(map[string]interface{}); ok {
			fmt.Printf("✓ Service created: %v (status: %v)\n", svc["id"], svc["status"])
		}
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func updateServiceStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "service ID")
	status := fs.String("to", "", "new status")
	notes := fs.String("notes", "", "optional notes")

	fs.Parse(args)

	if *id == "" || *status == "" {
		fmt.Println("Error: id and to are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"status": *status, "notes": *notes}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/services/"+*id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Status updated to %s\n", *status)
	} else {
		fmt.Printf("✗ Update failed: %v\n", result)
	}
}

func listServiceUpdates(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: servicetracker service updates <service-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/services/"+args[0]+"/updates", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Updates []map[string]interface{} `json:"updates"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tMESSAGE")
	for _, u := range result.Updates {
		fmt.Fprintf(w, "%v\t%v\n", u["createdAt"], u["message"])
	}
	w.Flush()
}

// Dashboard
func showDashboard(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/dashboard", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

// mintToken signs a dev token locally, bypassing signup. Useful against a
// server running with the same JWT_SECRET.
func mintToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	id := fs.String("id", "", "identity ID (subject)")
	email := fs.String("email", "", "identity email")
	name := fs.String("name", "", "display name")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")

	fs.Parse(args)

	if *id == "" || *email == "" {
		fmt.Println("Error: id and email are required")
		fs.PrintDefaults()
		return
	}

	tm := identity.NewTokenManager(os.Getenv("JWT_SECRET"), "servicetracker")
	token, err := tm.GenerateToken(*id, *email, *name, *ttl)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	saveToken(token)
	fmt.Println(token)
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("SERVICETRACKER_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".servicetracker", "token")
}

func saveToken(token string) error {
	os.MkdirAll(filepath.Dir(tokenFile()), 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`ServiceTracker CLI

Usage:
  servicetracker <command> [options]

Commands:
  auth       Authentication (signup, login, logout, who)
  business   Business profile (show, onboard, check)
  customer   Customer operations (list, create, delete)
  service    Service tickets (create, status, updates)
  dashboard  Show the dashboard snapshot
  token      Mint a local dev token (requires JWT_SECRET)
  help       Show this help message

Environment Variables:
  SERVICETRACKER_API    API endpoint (default: http://localhost:8080/api)
  JWT_SECRET            Signing secret for the token command

Examples:
  servicetracker auth signup -email owner@example.com -password secret123
  servicetracker business onboard -name "Bob's HVAC"
  servicetracker service create -title "AC repair" -customer "Jane" -email jane@example.com
  servicetracker service status -id <service-id> -to IN_PROGRESS
`)
}
