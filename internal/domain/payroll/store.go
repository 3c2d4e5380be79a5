package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const recordColumns = `
    p.id, p.employee_id, e.employee_no, u.name, e.position, e.department,
    p.pay_period_start, p.pay_period_end,
    p.base_salary, p.overtime_hours, p.public_holiday_days, p.public_holiday_ot_hours, p.bonus,
    p.other_deductions, p.pcb_enabled, p.marital_status,
    p.overtime_pay, p.public_holiday_pay, p.public_holiday_ot_pay,
    p.employee_epf, p.employer_epf, p.employee_socso, p.employer_socso, p.employee_eis, p.employer_eis,
    p.tax_deductions, p.net_salary, p.payment_date, p.payment_status, p.payment_reference,
    p.payslip_pdf IS NOT NULL, p.created_at`

const recordFrom = `
    FROM payrolls p
    JOIN employees e ON e.id = p.employee_id
    JOIN users u ON u.id = e.user_id`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var marital string
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.EmployeeNumber, &r.EmployeeName, &r.Position, &r.Department,
		&r.PayPeriodStart, &r.PayPeriodEnd,
		&r.Input.BaseSalary, &r.Input.OvertimeHours, &r.Input.PublicHolidayDays, &r.Input.PublicHolidayOTHours, &r.Input.Bonus,
		&r.Input.OtherDeductions, &r.Input.PCBEnabled, &marital,
		&r.Overtime, &r.PublicHoliday, &r.PublicHolidayOT,
		&r.Statutory.EmployeeEPF, &r.Statutory.EmployerEPF, &r.Statutory.EmployeeSOCSO, &r.Statutory.EmployerSOCSO,
		&r.Statutory.EmployeeEIS, &r.Statutory.EmployerEIS,
		&r.TaxDeductions, &r.NetSalary, &r.PaymentDate, &r.PaymentStatus, &r.PaymentReference,
		&r.HasPayslip, &r.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	r.Input.MaritalStatus = MaritalStatus(marital)
	if !r.Input.PCBEnabled {
		r.Input.ManualTax = r.TaxDeductions
	}
	return r, nil
}

func (s *Store) Create(ctx context.Context, r Record) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payrolls (
      employee_id, pay_period_start, pay_period_end,
      base_salary, overtime_hours, overtime_pay, public_holiday_days, public_holiday_pay,
      public_holiday_ot_hours, public_holiday_ot_pay, bonus,
      employee_epf, employer_epf, employee_socso, employer_socso, employee_eis, employer_eis,
      tax_deductions, other_deductions, pcb_enabled, marital_status,
      net_salary, payment_date, payment_status, payment_reference
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
    RETURNING id
  `,
		r.EmployeeID, r.PayPeriodStart, r.PayPeriodEnd,
		r.Input.BaseSalary, r.Input.OvertimeHours, r.Overtime, r.Input.PublicHolidayDays, r.PublicHoliday,
		r.Input.PublicHolidayOTHours, r.PublicHolidayOT, r.Input.Bonus,
		r.Statutory.EmployeeEPF, r.Statutory.EmployerEPF, r.Statutory.EmployeeSOCSO, r.Statutory.EmployerSOCSO,
		r.Statutory.EmployeeEIS, r.Statutory.EmployerEIS,
		r.TaxDeductions, r.Input.OtherDeductions, r.Input.PCBEnabled, string(r.Input.MaritalStatus),
		r.NetSalary, r.PaymentDate, r.PaymentStatus, r.PaymentReference,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrPayrollExists
	}
	if err != nil {
		return "", fmt.Errorf("failed to create payroll: %w", err)
	}
	return id, nil
}

func (s *Store) Exists(ctx context.Context, employeeID string, periodStart time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS(SELECT 1 FROM payrolls WHERE employee_id = $1 AND pay_period_start = $2)
  `, employeeID, periodStart).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll: %w", err)
	}
	return exists, nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	r, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+recordFrom+" WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrPayrollNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, filter Filter) (ListResult, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND p.employee_id = $%d", len(args))
	}
	if !filter.Month.IsZero() {
		start, end := MonthBounds(filter.Month)
		args = append(args, start, end)
		where += fmt.Sprintf(" AND p.pay_period_start BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+recordFrom+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count payrolls: %w", err)
	}

	query := "SELECT " + recordColumns + recordFrom + where + " ORDER BY p.pay_period_start DESC, u.name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	out := ListResult{Items: []Record{}, Total: total}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return ListResult{}, err
		}
		out.Items = append(out.Items, r)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM payrolls WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPayrollNotFound
	}
	return nil
}

func (s *Store) SetPayslip(ctx context.Context, id string, pdf []byte) error {
	tag, err := s.DB.Exec(ctx, "UPDATE payrolls SET payslip_pdf = $1 WHERE id = $2", pdf, id)
	if err != nil {
		return fmt.Errorf("failed to store payslip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPayrollNotFound
	}
	return nil
}

func (s *Store) Payslip(ctx context.Context, id string) ([]byte, error) {
	var pdf []byte
	err := s.DB.QueryRow(ctx, "SELECT payslip_pdf FROM payrolls WHERE id = $1", id).Scan(&pdf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPayrollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payslip: %w", err)
	}
	if len(pdf) == 0 {
		return nil, ErrPayslipNotReady
	}
	return pdf, nil
}
