package roster

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/cohortdata/pkg/compression"
	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/source"
	"github.com/ajitpratap0/cohortdata/pkg/testutil"
)

type LoadSuite struct {
	testutil.IntegrationTestSuite
	content string
}

func TestLoadSuite(t *testing.T) {
	testutil.IntegrationTest(t)
	suite.Run(t, new(LoadSuite))
}

func (s *LoadSuite) SetupSuite() {
	s.IntegrationTestSuite.SetupSuite()
	s.content = testutil.ReadRosterFixture(s.T())
}

func (s *LoadSuite) TestLoadPlainFile() {
	ds, err := Load(s.Context(), testutil.RosterFixture(s.T()))
	s.Require().NoError(err)
	s.Equal(42, ds.Len())
	s.Equal("Harry Potter", ds.AllData()[0].Name)
}

func (s *LoadSuite) TestLoadFileURI() {
	path := s.CreateTempFile("uri.txt", []byte(s.content))

	ds, err := Load(s.Context(), "file://"+path)
	s.Require().NoError(err)
	s.Equal(42, ds.Len())
	s.Equal("file://"+path, ds.Source())
}

func (s *LoadSuite) TestLoadCompressed() {
	cases := map[compression.Algorithm]string{
		compression.Gzip:   "cohort_data.txt.gz",
		compression.Zstd:   "cohort_data.txt.zst",
		compression.LZ4:    "cohort_data.txt.lz4",
		compression.Snappy: "cohort_data.txt.sz",
		compression.S2:     "cohort_data.txt.s2",
	}

	for alg, name := range cases {
		s.Run(string(alg), func() {
			path := testutil.WriteCompressed(s.T(), s.TempDir(), name, s.content, alg)

			ds, err := Load(s.Context(), path)
			s.Require().NoError(err)
			s.Equal(42, ds.Len())
			s.Equal([]string{"Creevey", "Patil", "Weasley"}, ds.FindDupedLastNames())
		})
	}
}

func (s *LoadSuite) TestLoadExplicitCompression() {
	path := testutil.WriteCompressed(s.T(), s.TempDir(), "roster.bin", s.content, compression.Zstd)

	ds, err := Load(s.Context(), path, WithCompression(compression.Zstd))
	s.Require().NoError(err)
	s.Equal(42, ds.Len())
}

func (s *LoadSuite) TestLoadCorruptCompressedFile() {
	path := s.CreateTempFile("broken.txt.gz", []byte("not gzip at all"))

	_, err := Load(s.Context(), path)
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeFile))
}

func (s *LoadSuite) TestLoadMissingFile() {
	_, err := Load(s.Context(), filepath.Join(s.TempDir(), "missing.txt"))
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *LoadSuite) TestLoadMalformedFile() {
	path := s.CreateTempFile("malformed.txt", []byte("Harry|Potter|Gryffindor|McGonagall|Fall 2015\nRon|Weasley|Gryffindor\n"))

	_, err := Load(s.Context(), path)
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeData))

	var e *errors.Error
	s.Require().True(errors.As(err, &e))
	uri, _ := e.Detail("uri")
	s.Equal(path, uri)
	line, _ := e.Detail("line")
	s.Equal(2, line)
}

func (s *LoadSuite) TestLoadInvalidURI() {
	_, err := Load(s.Context(), "s3://bucket-only")
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeValidation))
}

func (s *LoadSuite) TestLoadWithRegistry() {
	reg := source.NewRegistry()
	var got source.Config
	s.Require().NoError(reg.Register(source.Info{Scheme: "mem"}, func(cfg source.Config) (source.Opener, error) {
		got = cfg
		return source.OpenerFunc(func(_ context.Context, loc source.Location) (io.ReadCloser, error) {
			s.Equal("school", loc.Bucket)
			return io.NopCloser(strings.NewReader(s.content)), nil
		}), nil
	}))

	ds, err := Load(s.Context(), "mem://school/cohort_data.txt",
		WithRegistry(reg),
		WithSourceConfig(source.Config{Region: "eu-west-2"}))
	s.Require().NoError(err)
	s.Equal(42, ds.Len())
	s.Equal("eu-west-2", got.Region)
}

func (s *LoadSuite) TestFileLevelQueries() {
	ctx := s.Context()
	path := testutil.RosterFixture(s.T())

	houses, err := AllHouses(ctx, path)
	s.Require().NoError(err)
	s.Len(houses, 5)

	students, err := StudentsByCohort(ctx, path, "Winter 2016")
	s.Require().NoError(err)
	s.Equal("Adrian Pucey", students[0])

	rosters, err := AllNamesByHouse(ctx, path)
	s.Require().NoError(err)
	s.Len(rosters, 7)

	entries, err := AllData(ctx, path)
	s.Require().NoError(err)
	s.Len(entries, 42)

	cohort, found, err := GetCohortFor(ctx, path, "Harry Potter")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("Fall 2015", cohort)

	_, found, err = GetCohortFor(ctx, path, "Balloonicorn")
	s.Require().NoError(err)
	s.False(found)

	dupes, err := FindDupedLastNames(ctx, path)
	s.Require().NoError(err)
	s.Equal([]string{"Creevey", "Patil", "Weasley"}, dupes)

	mates, err := GetHousematesFor(ctx, path, "Hermione Granger")
	s.Require().NoError(err)
	s.Equal([]string{"Angelina Johnson", "Fred Weasley", "Harry Potter", "Seamus Finnigan"}, mates)
}

func (s *LoadSuite) TestFileLevelRostersOverlap() {
	path := s.CreateTempFile("overlap.txt", []byte(
		"Nearly Headless|Nick|Gryffindor||G\n"+
			"Severus|Snape|Slytherin||I\n"+
			"Harry|Potter|Gryffindor|McGonagall|Fall 2015\n"))

	rosters, err := AllNamesByHouse(s.Context(), path)
	s.Require().NoError(err)

	byName := make(map[string][]string, len(rosters))
	for _, r := range rosters {
		byName[r.Name] = r.Names
	}
	s.Equal([]string{"Harry Potter", "Nearly Headless Nick"}, byName[HouseGryffindor])
	s.Equal([]string{"Nearly Headless Nick"}, byName[RosterGhosts])
	s.Equal([]string{"Severus Snape"}, byName[HouseSlytherin])
	s.Equal([]string{"Severus Snape"}, byName[RosterInstructors])
}

func (s *LoadSuite) TestFileLevelQueriesRereadFile() {
	path := s.CreateTempFile("changing.txt", []byte("Harry|Potter|Gryffindor|McGonagall|Fall 2015\n"))

	houses, err := AllHouses(s.Context(), path)
	s.Require().NoError(err)
	s.Equal([]string{"Gryffindor"}, houses)

	path = s.CreateTempFile("changing.txt", []byte("Cho|Chang|Ravenclaw|Flitwick|Fall 2015\n"))
	houses, err = AllHouses(s.Context(), path)
	s.Require().NoError(err)
	s.Equal([]string{"Ravenclaw"}, houses)
}

func (s *LoadSuite) TestFileLevelQueryErrors() {
	missing := filepath.Join(s.TempDir(), "nope.txt")

	_, err := AllHouses(s.Context(), missing)
	s.True(errors.IsNotFound(err))
	_, _, err = GetCohortFor(s.Context(), missing, "Harry Potter")
	s.True(errors.IsNotFound(err))
	_, err = GetHousematesFor(s.Context(), missing, "Harry Potter")
	s.True(errors.IsNotFound(err))
}
