package store

import (
	"github.com/evpark/evpark/core/model"
	"github.com/evpark/evpark/core/policy"
)

// Seed loads the demo fleet: two chargers with staggered slot grids and a
// config table naming the given user as admin. Existing chargers are kept.
func Seed(st Store, adminEmail string) error {
	chargers, err := st.Chargers()
	if err != nil {
		return err
	}
	if len(chargers) == 0 {
		demo := []model.Charger{
			{ID: "1", Name: "Charger 1", MaxMinutes: 60, SlotStarts: []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00"}},
			{ID: "2", Name: "Charger 2", MaxMinutes: 90, SlotStarts: []string{"07:00", "09:00", "11:00", "13:00", "15:00"}},
		}
		for _, c := range demo {
			if err := st.AppendCharger(c); err != nil {
				return err
			}
		}
	}
	defaults := [][2]string{
		{policy.KeyAllowedDomain, "example.com"},
		{policy.KeyAdminEmails, adminEmail},
		{policy.KeyOpenHour, "6"},
		{policy.KeyOpenMinute, "0"},
	}
	existing, err := st.ConfigValues()
	if err != nil {
		return err
	}
	for _, kv := range defaults {
		if _, ok := existing[kv[0]]; ok {
			continue
		}
		if err := st.SetConfigValue(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
