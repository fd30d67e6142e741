package roster

import "context"

// The functions below each open and parse uri independently, then run one
// query. Use Load and the Dataset methods to answer several queries from a
// single read.

// AllHouses returns the distinct non-empty houses in uri, sorted.
func AllHouses(ctx context.Context, uri string, opts ...LoadOption) ([]string, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.AllHouses(), nil
}

// StudentsByCohort returns the sorted full names in cohort.
func StudentsByCohort(ctx context.Context, uri, cohort string, opts ...LoadOption) ([]string, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.StudentsByCohort(cohort), nil
}

// AllNamesByHouse returns the seven rosters in uri.
func AllNamesByHouse(ctx context.Context, uri string, opts ...LoadOption) ([]Roster, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.AllNamesByHouse(), nil
}

// AllData returns every entry in uri in file order.
func AllData(ctx context.Context, uri string, opts ...LoadOption) ([]Entry, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.AllData(), nil
}

// GetCohortFor looks up name's cohort in uri.
func GetCohortFor(ctx context.Context, uri, name string, opts ...LoadOption) (string, bool, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return "", false, err
	}
	cohort, ok := d.GetCohortFor(name)
	return cohort, ok, nil
}

// FindDupedLastNames returns the sorted duplicated last names in uri.
func FindDupedLastNames(ctx context.Context, uri string, opts ...LoadOption) ([]string, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.FindDupedLastNames(), nil
}

// GetHousematesFor returns name's housemates in uri.
func GetHousematesFor(ctx context.Context, uri, name string, opts ...LoadOption) ([]string, error) {
	d, err := Load(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return d.GetHousematesFor(name), nil
}
