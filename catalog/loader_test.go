package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const moviesCSV = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
,Broken row (2000),Drama
3,"Grumpier Old Men, The (1995)",Comedy|Romance
`

const ratingsCSV = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.0,964981247
2,1,5.0,964982224
2,x,3.0,964982224
`

const linksCSV = `movieId,imdbId,tmdbId
1,0114709,862
2,0113497,8844
3,0113228,
`

func writeDataset(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadMovieLens(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		MoviesFile:  moviesCSV,
		RatingsFile: ratingsCSV,
		LinksFile:   linksCSV,
	})
	c, err := LoadMovieLens(dir)
	if err != nil {
		t.Fatalf("LoadMovieLens: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (malformed row rejected)", c.Len())
	}
	if n := len(c.Interactions()); n != 3 {
		t.Fatalf("interactions = %d, want 3", n)
	}

	m, _ := c.Get(1)
	if m.TMDBID != 862 || m.IMDBID != "tt0114709" || m.Year != 1995 {
		t.Fatalf("movie 1 = %+v", m)
	}
	m, _ = c.Get(3)
	if m.Title != "The Grumpier Old Men" || m.TMDBID != 0 {
		t.Fatalf("movie 3 = %+v", m)
	}
}

func TestLoadMovieLensOptionalFiles(t *testing.T) {
	dir := writeDataset(t, map[string]string{MoviesFile: moviesCSV})
	c, err := LoadMovieLens(dir)
	if err != nil {
		t.Fatalf("LoadMovieLens without ratings/links: %v", err)
	}
	if len(c.Interactions()) != 0 {
		t.Fatal("expected no interactions")
	}
}

func TestLoadMovieLensMissingMovies(t *testing.T) {
	if _, err := LoadMovieLens(t.TempDir()); err == nil {
		t.Fatal("expected error when movies.csv is missing")
	}
}

func TestReadMoviesMissingColumn(t *testing.T) {
	_, err := ReadMovies(strings.NewReader("movieId,title\n1,Toy Story (1995)\n"))
	if err == nil || !strings.Contains(err.Error(), "genres") {
		t.Fatalf("err = %v, want missing genres column", err)
	}
}
