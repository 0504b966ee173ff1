package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portsrepo "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
)

// MockPaymentRepository is a mock type for the PaymentRepositoryFacade interface
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.CustomerPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveAllocation(ctx context.Context, allocation domain.PaymentAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePayment(ctx context.Context, payment domain.CustomerPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.CustomerPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, params dto.ListCustomerPaymentsParams) ([]domain.CustomerPayment, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerPayment), args.Error(1)
}

var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

// --- Test Suite Setup ---

type PaymentServiceTestSuite struct {
	suite.Suite
	mockRepo        *MockPaymentRepository
	mockJournalRepo *MockJournalRepository
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockPaymentRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewPaymentService(suite.mockRepo, suite.mockJournalRepo)
}

// --- Test Cases ---

func (suite *PaymentServiceTestSuite) TestCreateCustomerPayment_Success() {
	ctx := context.Background()
	req := dto.CreateCustomerPaymentRequest{
		CustomerID:  uuid.NewString(),
		PaymentDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("1250.50"),
		Reference:   "wire-20250515",
	}

	suite.mockRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.CustomerPayment")).Return(nil).Once()

	payment, err := suite.service.CreateCustomerPayment(ctx, req, "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(payment)
	suite.Equal(req.CustomerID, payment.CustomerID)
	suite.True(payment.Amount.Equal(req.Amount))
	suite.Equal("tester", payment.CreatedBy)
	suite.NotEmpty(payment.PaymentID)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreateCustomerPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateCustomerPaymentRequest{
		CustomerID:  uuid.NewString(),
		PaymentDate: time.Now().UTC(),
		Amount:      decimal.Zero,
	}

	payment, err := suite.service.CreateCustomerPayment(ctx, req, "tester")

	suite.Require().Error(err)
	suite.Nil(payment)
	suite.ErrorIs(err, services.ErrPaymentAmountNotPositive)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_Success() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	entryID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}
	targetEntry := &domain.JournalEntry{EntryID: entryID, Status: domain.Posted}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(targetEntry, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return([]domain.PaymentAllocation{}, nil).Once()
	suite.mockRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.PaymentAllocation")).Return(nil).Once()

	allocation, err := suite.service.CreatePaymentAllocation(ctx, paymentID, dto.CreatePaymentAllocationRequest{
		TargetEntryID: entryID,
		Amount:        decimal.NewFromInt(400),
	}, "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(allocation)
	suite.Equal(paymentID, allocation.PaymentID)
	suite.Equal(entryID, allocation.TargetEntryID)
	suite.True(allocation.Amount.Equal(decimal.NewFromInt(400)))

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_OverAllocation() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	entryID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}
	existing := []domain.PaymentAllocation{
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(600)},
	}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(&domain.JournalEntry{EntryID: entryID}, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return(existing, nil).Once()

	// 600 already allocated, 500 more would exceed the 1000 payment.
	allocation, err := suite.service.CreatePaymentAllocation(ctx, paymentID, dto.CreatePaymentAllocationRequest{
		TargetEntryID: entryID,
		Amount:        decimal.NewFromInt(500),
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(allocation)
	suite.ErrorIs(err, apperrors.ErrOverAllocation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAllocation", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_ExactRemainderAllowed() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	entryID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}
	existing := []domain.PaymentAllocation{
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(600)},
	}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(&domain.JournalEntry{EntryID: entryID}, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return(existing, nil).Once()
	suite.mockRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.PaymentAllocation")).Return(nil).Once()

	allocation, err := suite.service.CreatePaymentAllocation(ctx, paymentID, dto.CreatePaymentAllocationRequest{
		TargetEntryID: entryID,
		Amount:        decimal.NewFromInt(400),
	}, "tester")

	suite.Require().NoError(err)
	suite.True(allocation.Amount.Equal(decimal.NewFromInt(400)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_TargetEntryMissing() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	entryID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(nil, apperrors.ErrNotFound).Once()

	allocation, err := suite.service.CreatePaymentAllocation(ctx, paymentID, dto.CreatePaymentAllocationRequest{
		TargetEntryID: entryID,
		Amount:        decimal.NewFromInt(100),
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(allocation)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAllocation", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_NonPositiveAmount() {
	ctx := context.Background()

	allocation, err := suite.service.CreatePaymentAllocation(ctx, uuid.NewString(), dto.CreatePaymentAllocationRequest{
		TargetEntryID: uuid.NewString(),
		Amount:        decimal.NewFromInt(-5),
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(allocation)
	suite.ErrorIs(err, services.ErrAllocationAmountNotPositive)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindPaymentByID", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePaymentAllocation_RepoRaceDetected() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	entryID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(&domain.JournalEntry{EntryID: entryID}, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return([]domain.PaymentAllocation{}, nil).Once()
	// A concurrent allocation lands between the pre-check and the insert; the
	// repository re-checks under a row lock and reports the overshoot.
	suite.mockRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.PaymentAllocation")).Return(apperrors.ErrOverAllocation).Once()

	allocation, err := suite.service.CreatePaymentAllocation(ctx, paymentID, dto.CreatePaymentAllocationRequest{
		TargetEntryID: entryID,
		Amount:        decimal.NewFromInt(800),
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(allocation)
	suite.ErrorIs(err, apperrors.ErrOverAllocation)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestGetCustomerPayment_PopulatesAllocations() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(300)}
	allocations := []domain.PaymentAllocation{
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(100)},
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(50)},
	}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return(allocations, nil).Once()

	found, err := suite.service.GetCustomerPayment(ctx, paymentID)

	suite.Require().NoError(err)
	suite.Len(found.Allocations, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestUpdateCustomerPayment_AmountBelowAllocated() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}
	allocations := []domain.PaymentAllocation{
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(600)},
	}
	newAmount := decimal.NewFromInt(500)

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return(allocations, nil).Once()

	updated, err := suite.service.UpdateCustomerPayment(ctx, paymentID, dto.UpdateCustomerPaymentRequest{
		Amount: &newAmount,
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, services.ErrPaymentBelowAllocations)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdatePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestUpdateCustomerPayment_Success() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000), Reference: "old"}
	newRef := "corrected-reference"

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockRepo.On("UpdatePayment", ctx, mock.AnythingOfType("domain.CustomerPayment")).Return(nil).Once()

	updated, err := suite.service.UpdateCustomerPayment(ctx, paymentID, dto.UpdateCustomerPaymentRequest{
		Reference: &newRef,
	}, "tester")

	suite.Require().NoError(err)
	suite.Equal(newRef, updated.Reference)
	suite.Equal("tester", updated.LastUpdatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestUpdateCustomerPayment_RepoRaceDetected() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(1000)}
	newAmount := decimal.NewFromInt(700)

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return([]domain.PaymentAllocation{
		{AllocationID: uuid.NewString(), PaymentID: paymentID, Amount: decimal.NewFromInt(500)},
	}, nil).Once()
	// A concurrent allocation lands between the pre-check and the update; the
	// repository re-checks under a row lock and refuses the shrink.
	suite.mockRepo.On("UpdatePayment", ctx, mock.AnythingOfType("domain.CustomerPayment")).Return(apperrors.ErrConflict).Once()

	updated, err := suite.service.UpdateCustomerPayment(ctx, paymentID, dto.UpdateCustomerPaymentRequest{
		Amount: &newAmount,
	}, "tester")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestDeleteCustomerPayment_Success() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	payment := &domain.CustomerPayment{PaymentID: paymentID, Amount: decimal.NewFromInt(100)}

	suite.mockRepo.On("FindPaymentByID", ctx, paymentID).Return(payment, nil).Once()
	suite.mockRepo.On("DeletePayment", ctx, paymentID).Return(nil).Once()

	err := suite.service.DeleteCustomerPayment(ctx, paymentID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListCustomerPayments_FilterByCustomer() {
	ctx := context.Background()
	customerID := uuid.NewString()
	params := dto.ListCustomerPaymentsParams{CustomerID: &customerID}
	payments := []domain.CustomerPayment{
		{PaymentID: uuid.NewString(), CustomerID: customerID, Amount: decimal.NewFromInt(200)},
	}

	suite.mockRepo.On("ListPayments", ctx, params).Return(payments, nil).Once()

	found, err := suite.service.ListCustomerPayments(ctx, params)

	suite.Require().NoError(err)
	suite.Len(found, 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
