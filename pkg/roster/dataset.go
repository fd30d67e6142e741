package roster

import "sort"

// Dataset is an immutable, parsed roster file. All query methods are pure and
// return freshly allocated slices.
type Dataset struct {
	source  string
	records []Record
}

// NewDataset wraps records. The slice is copied.
func NewDataset(source string, records []Record) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Dataset{source: source, records: owned}
}

// Source returns the URI the dataset was loaded from, if any.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records (lines) in the dataset.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in file order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// AllHouses returns the distinct non-empty houses, sorted.
func (d *Dataset) AllHouses() []string {
	seen := make(map[string]struct{})
	for _, r := range d.records {
		if r.House != "" {
			seen[r.House] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// StudentsByCohort returns the sorted full names in cohort. AllCohorts selects
// every record that is neither a ghost nor an instructor.
func (d *Dataset) StudentsByCohort(cohort string) []string {
	names := []string{}
	for _, r := range d.records {
		if cohort == AllCohorts {
			if r.Status() == StatusRegular {
				names = append(names, r.FullName())
			}
		} else if r.Cohort == cohort {
			names = append(names, r.FullName())
		}
	}
	sort.Strings(names)
	return names
}

// AllNamesByHouse returns the seven rosters named by RosterNames. House and
// ghost/instructor membership are checked independently, so a record may be
// listed twice.
func (d *Dataset) AllNamesByHouse() []Roster {
	index := make(map[string]int, len(RosterNames))
	rosters := make([]Roster, len(RosterNames))
	for i, name := range RosterNames {
		index[name] = i
		rosters[i] = Roster{Name: name, Names: []string{}}
	}

	for _, r := range d.records {
		name := r.FullName()
		switch r.House {
		case HouseDumbledoresArmy, HouseGryffindor, HouseHufflepuff, HouseRavenclaw, HouseSlytherin:
			i := index[r.House]
			rosters[i].Names = append(rosters[i].Names, name)
		}
		switch r.Status() {
		case StatusGhost:
			i := index[RosterGhosts]
			rosters[i].Names = append(rosters[i].Names, name)
		case StatusInstructor:
			i := index[RosterInstructors]
			rosters[i].Names = append(rosters[i].Names, name)
		}
	}

	for i := range rosters {
		sort.Strings(rosters[i].Names)
	}
	return rosters
}

// AllData returns one entry per record in file order.
func (d *Dataset) AllData() []Entry {
	entries := make([]Entry, 0, len(d.records))
	for _, r := range d.records {
		entries = append(entries, r.Entry())
	}
	return entries
}

// GetCohortFor returns the cohort of the first record whose full name is
// name. ok is false when no record matches or the first match has no cohort.
func (d *Dataset) GetCohortFor(name string) (cohort string, ok bool) {
	for _, r := range d.records {
		if r.FullName() != name {
			continue
		}
		if r.Cohort == "" {
			return "", false
		}
		return r.Cohort, true
	}
	return "", false
}

// FindDupedLastNames returns the sorted last names found on two or more
// records.
func (d *Dataset) FindDupedLastNames() []string {
	counts := make(map[string]int)
	dupes := make(map[string]struct{})
	for _, r := range d.records {
		counts[r.LastName]++
		if counts[r.LastName] == 2 {
			dupes[r.LastName] = struct{}{}
		}
	}
	return sortedKeys(dupes)
}

// GetHousematesFor returns the sorted names of everyone sharing both house
// and cohort with name. When name appears on several records the last one
// decides the house and cohort. An unknown name keeps the empty house and
// cohort, so it matches records that have neither.
func (d *Dataset) GetHousematesFor(name string) []string {
	var house, cohort string
	for _, r := range d.records {
		if r.FullName() == name {
			house, cohort = r.House, r.Cohort
		}
	}

	mates := make(map[string]struct{})
	for _, r := range d.records {
		if r.House != house || r.Cohort != cohort {
			continue
		}
		if full := r.FullName(); full != name {
			mates[full] = struct{}{}
		}
	}
	return sortedKeys(mates)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
