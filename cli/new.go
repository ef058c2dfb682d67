package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/document"
)

type NewCmd struct {
	Output string `help:"File to write the request to (defaults to stdout)." type:"path" short:"o"`
}

func (cmd *NewCmd) Run(ctx *kong.Context) error {
	if !isTerminal() {
		return fmt.Errorf("new requires an interactive terminal")
	}

	today := time.Now().Format(document.DateFormat)

	var (
		loanType       = "individual"
		clientID       string
		groupID        string
		productID      string
		principal      string
		repayments     string
		repaymentEvery = "1"
		frequencyType  = "2"
		submittedOn    = today
		expectedOn     = today
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Loan type").
				Options(
					huh.NewOption("Individual", "individual"),
					huh.NewOption("Group", "group"),
					huh.NewOption("Joint liability group", "jlg"),
				).
				Value(&loanType),
			huh.NewInput().
				Title("Client id").
				Description("Leave empty for group loans.").
				Validate(validOptionalInt).
				Value(&clientID),
			huh.NewInput().
				Title("Group id").
				Description("Leave empty for individual loans.").
				Validate(validOptionalInt).
				Value(&groupID),
			huh.NewInput().
				Title("Product id").
				Validate(validInt).
				Value(&productID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Principal").
				Validate(validAmount).
				Value(&principal),
			huh.NewInput().
				Title("Number of repayments").
				Validate(validInt).
				Value(&repayments),
			huh.NewInput().
				Title("Repaid every").
				Validate(validInt).
				Value(&repaymentEvery),
			huh.NewSelect[string]().
				Title("Repayment frequency").
				Options(
					huh.NewOption("Days", "0"),
					huh.NewOption("Weeks", "1"),
					huh.NewOption("Months", "2"),
					huh.NewOption("Years", "3"),
				).
				Value(&frequencyType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Submitted on").
				Validate(validDate).
				Value(&submittedOn),
			huh.NewInput().
				Title("Expected disbursement").
				Validate(validDate).
				Value(&expectedOn),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}

	repaymentsN, _ := strconv.ParseInt(repayments, 10, 64)
	everyN, _ := strconv.ParseInt(repaymentEvery, 10, 64)
	frequencyN, _ := strconv.ParseInt(frequencyType, 10, 64)
	principalN, _ := decimal.NewFromString(principal)

	request := map[string]any{
		"loanType":                      loanType,
		"principal":                     principalN,
		"numberOfRepayments":            repaymentsN,
		"repaymentEvery":                everyN,
		"repaymentFrequencyType":        frequencyN,
		"loanTermFrequency":             repaymentsN * everyN,
		"loanTermFrequencyType":         frequencyN,
		"interestType":                  0,
		"interestCalculationPeriodType": 1,
		"amortizationType":              1,
		"submittedOnDate":               submittedOn,
		"expectedDisbursementDate":      expectedOn,
	}

	if id, err := strconv.ParseInt(productID, 10, 64); err == nil {
		request["productId"] = id
	}
	if clientID != "" {
		id, _ := strconv.ParseInt(clientID, 10, 64)
		request["clientId"] = id
	}
	if groupID != "" {
		id, _ := strconv.ParseInt(groupID, 10, 64)
		request["groupId"] = id
	}

	encoded, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	if cmd.Output == "" {
		_, _ = ctx.Stdout.Write(encoded)
		return nil
	}

	if _, err := os.Stat(cmd.Output); err == nil {
		overwrite, err := promptYesNo(ctx, fmt.Sprintf("Overwrite %s?", cmd.Output))
		if err != nil {
			return err
		}
		if !overwrite {
			printInfof(ctx.Stdout, "left %s untouched", pathStyle.Render(cmd.Output))
			return nil
		}
	}

	if err := os.WriteFile(cmd.Output, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("wrote %s", pathStyle.Render(cmd.Output)))

	return nil
}

func validInt(s string) error {
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func validOptionalInt(s string) error {
	if s == "" {
		return nil
	}
	return validInt(s)
}

func validAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validDate(s string) error {
	if _, err := time.Parse(document.DateFormat, s); err != nil {
		return fmt.Errorf("must be a %s date", document.DateFormat)
	}
	return nil
}
