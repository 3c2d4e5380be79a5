package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hrdesk/internal/domain/payroll"
)

func newPayrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Payroll tools that need no database",
	}
	cmd.AddCommand(newPayrollCalcCmd())
	return cmd
}

func newPayrollCalcCmd() *cobra.Command {
	var (
		raw       payroll.RawInput
		ratesFile string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute one month of pay and print the breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := raw.Parse()
			if err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return err
			}
			rates := payroll.DefaultRates()
			if ratesFile != "" {
				data, err := os.ReadFile(ratesFile)
				if err != nil {
					return fmt.Errorf("read rates: %w", err)
				}
				if rates, err = payroll.LoadRates(data); err != nil {
					return err
				}
			}
			res := payroll.NewCalculator(rates).Compute(in)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprint(out, payroll.Breakdown(in, res))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&raw.BaseSalary, "base", "", "Monthly base salary (RM)")
	f.StringVar(&raw.OvertimeHours, "ot-hours", "", "Overtime hours")
	f.StringVar(&raw.PublicHolidayDays, "ph-days", "", "Public holiday days worked")
	f.StringVar(&raw.PublicHolidayOTHours, "ph-ot-hours", "", "Public holiday overtime hours")
	f.StringVar(&raw.Bonus, "bonus", "", "Bonus (RM)")
	f.StringVar(&raw.OtherDeductions, "other-deductions", "", "Other deductions (RM)")
	f.StringVar(&raw.ManualTax, "tax", "", "Manual tax when PCB is off (RM)")
	f.StringVar(&raw.MaritalStatus, "marital-status", "Single", "Single, MarriedNonWorkingSpouse or MarriedWorkingSpouse")
	f.BoolVar(&raw.PCBEnabled, "pcb", false, "Compute PCB from the schedule instead of --tax")
	f.StringVar(&ratesFile, "rates", "", "YAML statutory rate table, defaults to the built-in one")
	f.BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}
