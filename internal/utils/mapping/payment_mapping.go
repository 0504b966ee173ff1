package mapping

import (
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	"github.com/pharmaledger/pharma_ledger_app/internal/models"
)

// ToModelCustomerPayment converts a domain CustomerPayment to a model CustomerPayment.
func ToModelCustomerPayment(d domain.CustomerPayment) models.CustomerPayment {
	return models.CustomerPayment{
		PaymentID:   d.PaymentID,
		CustomerID:  d.CustomerID,
		PaymentDate: d.PaymentDate,
		Amount:      d.Amount,
		Reference:   d.Reference,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCustomerPayment converts a model CustomerPayment to a domain CustomerPayment.
func ToDomainCustomerPayment(m models.CustomerPayment) domain.CustomerPayment {
	return domain.CustomerPayment{
		PaymentID:   m.PaymentID,
		CustomerID:  m.CustomerID,
		PaymentDate: m.PaymentDate,
		Amount:      m.Amount,
		Reference:   m.Reference,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelPaymentAllocation converts a domain PaymentAllocation to a model PaymentAllocation.
func ToModelPaymentAllocation(d domain.PaymentAllocation) models.PaymentAllocation {
	return models.PaymentAllocation{
		AllocationID:  d.AllocationID,
		PaymentID:     d.PaymentID,
		TargetEntryID: d.TargetEntryID,
		Amount:        d.Amount,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPaymentAllocation converts a model PaymentAllocation to a domain PaymentAllocation.
func ToDomainPaymentAllocation(m models.PaymentAllocation) domain.PaymentAllocation {
	return domain.PaymentAllocation{
		AllocationID:  m.AllocationID,
		PaymentID:     m.PaymentID,
		TargetEntryID: m.TargetEntryID,
		Amount:        m.Amount,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentAllocationSlice converts a slice of model allocations to domain allocations.
func ToDomainPaymentAllocationSlice(ms []models.PaymentAllocation) []domain.PaymentAllocation {
	ds := make([]domain.PaymentAllocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPaymentAllocation(m)
	}
	return ds
}
