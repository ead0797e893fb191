// Command cli is the interactive console front-end: a menu loop over the bank
// service. It owns no ledger rules; it parses input, calls the service and
// renders the results.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/amiraly/banksim/infra/initializer"
	"github.com/amiraly/banksim/pkg/config"
	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/service"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

var (
	title   = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

func main() {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		failure.Println("Failed to load config:", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		failure.Println("Failed to start:", err)
		os.Exit(1)
	}

	cli := &cli{bank: deps.Bank, in: bufio.NewReader(os.Stdin)}
	cli.run()
}

type cli struct {
	bank *service.BankService
	in   *bufio.Reader
}

func (c *cli) run() {
	for {
		title.Println("\n--- Banking System ---")
		fmt.Println("1. Create Account")
		fmt.Println("2. Login")
		fmt.Println("3. Display All Accounts")
		fmt.Println("4. Admin Login")
		fmt.Println("5. Exit")

		switch c.readLine("Enter your choice: ") {
		case "1":
			c.createAccount()
		case "2":
			c.login()
		case "3":
			c.listAccounts()
		case "4":
			c.adminLogin()
		case "5":
			fmt.Println("Exiting... Goodbye!")
			return
		default:
			failure.Println("Invalid choice. Please try again.")
		}
	}
}

func (c *cli) createAccount() {
	name := c.readLine("Enter your name: ")
	username := c.readLine("Choose a username: ")
	password := c.readSecret("Choose a password: ")
	pin := c.readSecret("Enter a 4-digit PIN: ")
	balance, ok := c.readAmount("Enter initial balance: ")
	if !ok {
		return
	}
	a, err := c.bank.CreateAccount(name, username, password, pin, balance)
	if err != nil {
		failure.Println(err)
		return
	}
	success.Printf("Account created successfully! Account Number: %d\n", a.Number())
}

func (c *cli) login() {
	username := c.readLine("Enter your username: ")
	password := c.readSecret("Enter your password: ")
	a, err := c.bank.Login(username, password)
	if err != nil {
		failure.Println(err)
		return
	}
	c.accountMenu(a.Number())
}

func (c *cli) accountMenu(number int64) {
	for {
		title.Println("\n--- Account Menu ---")
		fmt.Println("1. Deposit")
		fmt.Println("2. Withdraw")
		fmt.Println("3. Transfer Funds")
		fmt.Println("4. Check Balance")
		fmt.Println("5. Transaction History")
		fmt.Println("6. Logout")

		switch c.readLine("Enter your choice: ") {
		case "1":
			amount, ok := c.readAmount("Enter deposit amount: ")
			if !ok {
				continue
			}
			balance, err := c.bank.Deposit(number, amount)
			if err != nil {
				failure.Println(err)
				continue
			}
			success.Printf("Deposited $%s. New balance: $%s\n", amount.StringFixed(2), balance.StringFixed(2))
		case "2":
			amount, ok := c.readAmount("Enter withdrawal amount: ")
			if !ok {
				continue
			}
			balance, err := c.bank.Withdraw(number, amount)
			if err != nil {
				failure.Println(err)
				continue
			}
			success.Printf("Withdrew $%s. New balance: $%s\n", amount.StringFixed(2), balance.StringFixed(2))
		case "3":
			c.transfer(number)
		case "4":
			balance, err := c.bank.Balance(number)
			if err != nil {
				failure.Println(err)
				continue
			}
			fmt.Printf("Account Balance: $%s\n", balance.StringFixed(2))
		case "5":
			c.history(number)
		case "6":
			fmt.Println("Logging out...")
			return
		default:
			failure.Println("Invalid choice. Please try again.")
		}
	}
}

func (c *cli) transfer(number int64) {
	recipientStr := c.readLine("Enter recipient account number: ")
	recipient, err := strconv.ParseInt(recipientStr, 10, 64)
	if err != nil {
		failure.Println("Invalid account number.")
		return
	}
	if _, err := c.bank.Account(recipient); err != nil {
		failure.Println("Recipient account not found.")
		return
	}
	amount, ok := c.readAmount("Enter transfer amount: ")
	if !ok {
		return
	}
	pin := c.readSecret("Enter your PIN: ")
	if err := c.bank.Transfer(number, recipient, amount, pin); err != nil {
		failure.Println(err)
		return
	}
	success.Println("Transfer successful.")
}

func (c *cli) history(number int64) {
	history, err := c.bank.History(number)
	if err != nil {
		failure.Println(err)
		return
	}
	if len(history) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Transaction Type\tAmount ($)\tFee ($)")
	for _, e := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Type, e.Amount.StringFixed(2), e.Fee.StringFixed(2))
	}
	w.Flush() //nolint: errcheck
}

func (c *cli) listAccounts() {
	accounts := c.bank.ListAccounts()
	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return
	}
	printAccountsTable(accounts)
}

func (c *cli) adminLogin() {
	username := c.readLine("Enter admin username: ")
	password := c.readSecret("Enter admin password: ")
	if err := c.bank.AdminLogin(username, password); err != nil {
		failure.Println("Invalid admin credentials.")
		return
	}
	success.Println("Admin logged in.")
	c.adminMenu()
}

func (c *cli) adminMenu() {
	for {
		title.Println("\n--- Admin Menu ---")
		fmt.Println("1. Unlock User Account")
		fmt.Println("2. View All Accounts")
		fmt.Println("3. Exit Admin Menu")

		switch c.readLine("Enter your choice: ") {
		case "1":
			numberStr := c.readLine("Enter account number to unlock: ")
			number, err := strconv.ParseInt(numberStr, 10, 64)
			if err != nil {
				failure.Println("Invalid account number.")
				continue
			}
			if err := c.bank.Unlock(number); err != nil {
				failure.Println(err)
				continue
			}
			success.Println("Account unlocked successfully.")
		case "2":
			c.listAccounts()
		case "3":
			fmt.Println("Exiting admin menu.")
			return
		default:
			failure.Println("Invalid choice.")
		}
	}
}

func printAccountsTable(accounts []service.AccountSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Account Number\tName\tUsername\tBalance\tStatus")
	for _, a := range accounts {
		status := "Active"
		if a.Locked {
			status = "Locked"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Username, a.Balance.StringFixed(2), status)
	}
	w.Flush() //nolint: errcheck
}

func (c *cli) readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// readSecret reads without echo when stdin is a terminal, falling back to a
// plain read when piped.
func (c *cli) readSecret(prompt string) string {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (c *cli) readAmount(prompt string) (decimal.Decimal, bool) {
	raw := c.readLine(prompt)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		failure.Println(domain.ErrInvalidAmount)
		return decimal.Zero, false
	}
	return amount, true
}
