// Package coa holds the pure chart-of-accounts rules: code/level coherence,
// parent hierarchy checks and postability. Nothing here touches storage; the
// account service feeds it live state.
package coa

import (
	"fmt"
	"strings"

	"github.com/openbooks/ledgercore/internal/core/domain"
)

// LevelForCode derives the hierarchy level from the code length.
// 1 digit -> class, 2 -> group, 4 -> account, 6 -> subaccount, 8 -> auxiliary.
// Any other length is invalid.
func LevelForCode(code string) domain.AccountLevel {
	switch len(code) {
	case 1:
		return domain.LevelClass
	case 2:
		return domain.LevelGroup
	case 4:
		return domain.LevelAccount
	case 6:
		return domain.LevelSubaccount
	case 8:
		return domain.LevelAuxiliary
	default:
		return domain.LevelInvalid
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateHierarchy checks the structural invariants of an account against its
// parent. parent must be nil exactly when the account is a level-1 class.
func ValidateHierarchy(acct domain.Account, parent *domain.Account) error {
	if !isDigits(acct.Code) {
		return fmt.Errorf("account code %q must contain only digits", acct.Code)
	}

	expected := LevelForCode(acct.Code)
	if expected == domain.LevelInvalid {
		return fmt.Errorf("account code %q has invalid length %d", acct.Code, len(acct.Code))
	}
	if acct.Level != expected {
		return fmt.Errorf("account %s declares level %d but code length implies level %d", acct.Code, acct.Level, expected)
	}

	if acct.Level == domain.LevelClass {
		if parent != nil {
			return fmt.Errorf("class account %s cannot have a parent", acct.Code)
		}
		return nil
	}

	if parent == nil {
		return fmt.Errorf("account %s at level %d requires a parent", acct.Code, acct.Level)
	}
	if parent.Level != acct.Level-1 {
		return fmt.Errorf("parent of %s must be level %d, got level %d", acct.Code, acct.Level-1, parent.Level)
	}
	if !strings.HasPrefix(acct.Code, parent.Code) {
		return fmt.Errorf("account code %s must extend parent code %s", acct.Code, parent.Code)
	}
	if acct.Nature != parent.Nature {
		return fmt.Errorf("account %s nature %s must match parent nature %s", acct.Code, acct.Nature, parent.Nature)
	}

	if acct.AllowsPostings && acct.Level != domain.LevelAuxiliary {
		return fmt.Errorf("account %s at level %d cannot accept postings, only auxiliaries do", acct.Code, acct.Level)
	}

	return nil
}

// ParentCode returns the code of the immediate parent in the hierarchy, or ""
// for class codes and invalid input. Lengths step 8 -> 6 -> 4 -> 2 -> 1.
func ParentCode(code string) string {
	switch len(code) {
	case 2:
		return code[:1]
	case 4:
		return code[:2]
	case 6:
		return code[:4]
	case 8:
		return code[:6]
	default:
		return ""
	}
}

// IsPostable reports whether the account may appear on an entry line.
func IsPostable(acct domain.Account) bool {
	return acct.IsActive && acct.AllowsPostings
}
