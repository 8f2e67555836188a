package mapping

import (
	"github.com/openbooks/ledgercore/internal/core/domain"
	"github.com/openbooks/ledgercore/internal/models"
)

// ToModelEntry converts a domain JournalEntry to a model JournalEntry.
// Lines travel separately.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:       d.EntryID,
		Sequence:      d.Sequence,
		EntryDate:     d.EntryDate,
		Type:          string(d.Type),
		SourceDocType: d.SourceDocType,
		SourceDocRef:  d.SourceDocRef,
		PartyTaxID:    d.PartyTaxID,
		PartyName:     d.PartyName,
		Description:   d.Description,
		TotalDebit:    d.TotalDebit,
		TotalCredit:   d.TotalCredit,
		Difference:    d.Difference,
		IntegrityHash: d.IntegrityHash,
		SourceIP:      d.SourceIP,
		UserAgent:     d.UserAgent,
		Status:        string(d.Status),
		VoidedAt:      d.VoidedAt,
		VoidedBy:      d.VoidedBy,
		VoidReason:    d.VoidReason,
		PeriodID:      d.PeriodID,
		SealedAt:      d.SealedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:       m.EntryID,
		Sequence:      m.Sequence,
		EntryDate:     m.EntryDate,
		Type:          domain.EntryType(m.Type),
		SourceDocType: m.SourceDocType,
		SourceDocRef:  m.SourceDocRef,
		PartyTaxID:    m.PartyTaxID,
		PartyName:     m.PartyName,
		Description:   m.Description,
		TotalDebit:    m.TotalDebit,
		TotalCredit:   m.TotalCredit,
		Difference:    m.Difference,
		IntegrityHash: m.IntegrityHash,
		SourceIP:      m.SourceIP,
		UserAgent:     m.UserAgent,
		Status:        domain.EntryStatus(m.Status),
		VoidedAt:      m.VoidedAt,
		VoidedBy:      m.VoidedBy,
		VoidReason:    m.VoidReason,
		PeriodID:      m.PeriodID,
		SealedAt:      m.SealedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntryLine converts a domain EntryLine to a model EntryLine
func ToModelEntryLine(d domain.EntryLine) models.EntryLine {
	return models.EntryLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		AccountCode: d.AccountCode,
		LineIndex:   d.LineIndex,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
		CostCenter:  d.CostCenter,
		PartyTaxID:  d.PartyTaxID,
		LineHash:    d.LineHash,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntryLine converts a model EntryLine to a domain EntryLine
func ToDomainEntryLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		AccountCode: m.AccountCode,
		LineIndex:   m.LineIndex,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		CostCenter:  m.CostCenter,
		PartyTaxID:  m.PartyTaxID,
		LineHash:    m.LineHash,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntryLineSlice converts a slice of model EntryLines
func ToDomainEntryLineSlice(ms []models.EntryLine) []domain.EntryLine {
	ds := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntryLine(m)
	}
	return ds
}
