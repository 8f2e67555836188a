package mapping

import (
	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		Level:           int(d.Level),
		ParentAccountID: d.ParentAccountID,
		Nature:          string(d.Nature),
		Kind:            string(d.Kind),
		AllowsPostings:  d.AllowsPostings,
		IsActive:        d.IsActive,
		Description:     d.Description,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		Level:           domain.AccountLevel(m.Level),
		ParentAccountID: m.ParentAccountID,
		Nature:          domain.AccountNature(m.Nature),
		Kind:            domain.AccountKind(m.Kind),
		AllowsPostings:  m.AllowsPostings,
		IsActive:        m.IsActive,
		Description:     m.Description,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
