package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/services"
)

// MockReportingRepository is a mock type for the ReportingRepository interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetAccountActivityData(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivityRow), args.Error(1)
}

func (m *MockReportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountActivityRow, []domain.AccountActivityRow, error) {
	args := m.Called(ctx, from, to)
	var revenue, expenses []domain.AccountActivityRow
	if args.Get(0) != nil {
		revenue = args.Get(0).([]domain.AccountActivityRow)
	}
	if args.Get(1) != nil {
		expenses = args.Get(1).([]domain.AccountActivityRow)
	}
	return revenue, expenses, args.Error(2)
}

func (m *MockReportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountActivityRow, []domain.AccountActivityRow, []domain.AccountActivityRow, error) {
	args := m.Called(ctx, asOf)
	var assets, liabilities, equity []domain.AccountActivityRow
	if args.Get(0) != nil {
		assets = args.Get(0).([]domain.AccountActivityRow)
	}
	if args.Get(1) != nil {
		liabilities = args.Get(1).([]domain.AccountActivityRow)
	}
	if args.Get(2) != nil {
		equity = args.Get(2).([]domain.AccountActivityRow)
	}
	return assets, liabilities, equity, args.Error(3)
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

// --- Test Suite Setup ---

type ReportingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockReportingRepository
	service  portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockReportingRepository)
	suite.service = services.NewReportingService(suite.mockRepo)
}

func activityRow(accountType domain.AccountType, debit, credit int64) domain.AccountActivityRow {
	return domain.AccountActivityRow{
		AccountID:   uuid.NewString(),
		AccountType: accountType,
		DebitTotal:  decimal.NewFromInt(debit),
		CreditTotal: decimal.NewFromInt(credit),
	}
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestAccountActivity_Success() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := []domain.AccountActivityRow{
		activityRow(domain.Asset, 1200, 300),
		activityRow(domain.Revenue, 0, 900),
	}

	suite.mockRepo.On("GetAccountActivityData", ctx, from, to).Return(rows, nil).Once()

	result, err := suite.service.AccountActivity(ctx, from, to)

	suite.Require().NoError(err)
	suite.Len(result, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_Totals() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	revenue := []domain.AccountActivityRow{
		activityRow(domain.Revenue, 100, 5100),
	}
	expenses := []domain.AccountActivityRow{
		activityRow(domain.Expense, 2000, 0),
		activityRow(domain.Expense, 1100, 100),
	}

	suite.mockRepo.On("GetProfitAndLossData", ctx, from, to).Return(revenue, expenses, nil).Once()

	report, err := suite.service.ProfitAndLoss(ctx, from, to)

	suite.Require().NoError(err)
	// Revenue is credit-normal, expenses are debit-normal.
	suite.True(report.TotalRevenue.Equal(decimal.NewFromInt(5000)))
	suite.True(report.TotalExpenses.Equal(decimal.NewFromInt(3000)))
	suite.True(report.NetProfit.Equal(decimal.NewFromInt(2000)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_EmptyPeriod() {
	ctx := context.Background()
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("GetProfitAndLossData", ctx, from, to).
		Return([]domain.AccountActivityRow{}, []domain.AccountActivityRow{}, nil).Once()

	report, err := suite.service.ProfitAndLoss(ctx, from, to)

	suite.Require().NoError(err)
	suite.True(report.TotalRevenue.IsZero())
	suite.True(report.TotalExpenses.IsZero())
	suite.True(report.NetProfit.IsZero())
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_Totals() {
	ctx := context.Background()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	assets := []domain.AccountActivityRow{
		activityRow(domain.Asset, 8000, 2000),
	}
	liabilities := []domain.AccountActivityRow{
		activityRow(domain.Liability, 500, 3500),
	}
	equity := []domain.AccountActivityRow{
		activityRow(domain.Equity, 0, 3000),
	}

	suite.mockRepo.On("GetBalanceSheetData", ctx, asOf).Return(assets, liabilities, equity, nil).Once()

	report, err := suite.service.BalanceSheet(ctx, asOf)

	suite.Require().NoError(err)
	suite.True(report.TotalAssets.Equal(decimal.NewFromInt(6000)))
	suite.True(report.TotalLiabilities.Equal(decimal.NewFromInt(3000)))
	suite.True(report.TotalEquity.Equal(decimal.NewFromInt(3000)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
