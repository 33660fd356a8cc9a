package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
)

var errUsage = errors.New("usage")

// Songs lists one page of the library. An optional leading number picks the
// page; the remaining words are the search string.
func (a *App) Songs(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			page, args = n, args[1:]
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.library.Browse(ctx, strings.Join(args, " "), page)
	if err != nil {
		return a.fail(err)
	}

	if len(resp.Items) == 0 {
		fmt.Fprintln(a.out, "No songs")
		return nil
	}
	for _, s := range resp.Items {
		fav := " "
		if s.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %s - %s  (%d plays)\n", fav, s.ID, s.Artist, s.Title, s.PlayCount)
	}
	fmt.Fprintf(a.out, "page %d of %d, %d songs\n", resp.Page, resp.Pages, resp.Total)
	return nil
}

// AddSong records a song whose audio has already been uploaded.
func (a *App) AddSong(ctx context.Context) error {
	var req pb.AddSongRequest
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Enter stored file path", &req.FilePath},
		{"Enter title (blank: file name)", &req.Title},
		{"Enter artist", &req.Artist},
		{"Enter album", &req.Album},
	} {
		v, err := GetSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return a.fail(err)
		}
		*f.dst = v
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	song, err := a.library.Add(ctx, req)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", song.Title, song.ID)
	return nil
}

func (a *App) ShowSong(ctx context.Context, args []string) error {
	return a.withSong(ctx, args, "show <id>", a.library.Show, a.printSong)
}

func (a *App) PlaySong(ctx context.Context, args []string) error {
	return a.withSong(ctx, args, "play <id>", a.library.Play, func(s pb.Song) {
		fmt.Fprintf(a.out, "Playing %s - %s (play #%d)\n", s.Artist, s.Title, s.PlayCount)
	})
}

func (a *App) FavoriteSong(ctx context.Context, args []string, on bool) error {
	fav := func(ctx context.Context, id string) (pb.Song, error) { return a.library.Favorite(ctx, id, on) }
	return a.withSong(ctx, args, "fav <id>", fav, func(s pb.Song) {
		if s.IsFavorite {
			fmt.Fprintf(a.out, "%s marked as favorite\n", s.Title)
		} else {
			fmt.Fprintf(a.out, "%s unmarked\n", s.Title)
		}
	})
}

func (a *App) RateSong(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("rate <id> <0-5>")
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return a.usage("rate <id> <0-5>")
	}

	rate := func(ctx context.Context, id string) (pb.Song, error) { return a.library.Rate(ctx, id, rating) }
	return a.withSong(ctx, args[:1], "rate <id> <0-5>", rate, func(s pb.Song) {
		if s.Rating == nil {
			fmt.Fprintf(a.out, "%s rating cleared\n", s.Title)
			return
		}
		fmt.Fprintf(a.out, "%s rated %d\n", s.Title, *s.Rating)
	})
}

func (a *App) DeleteSong(ctx context.Context, args []string) error {
	return a.withSong(ctx, args, "delete <id>", a.library.Delete, func(s pb.Song) {
		fmt.Fprintf(a.out, "Deleted %s; stored file %s can be removed\n", s.Title, s.FilePath)
	})
}

// withSong runs fn on the single id in args and prints the result.
func (a *App) withSong(ctx context.Context, args []string, usage string,
	fn func(context.Context, string) (pb.Song, error), show func(pb.Song)) error {
	if len(args) != 1 {
		return a.usage(usage)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	song, err := fn(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}
	show(song)
	return nil
}

func (a *App) usage(u string) error {
	fmt.Fprintln(a.out, "Usage:", u)
	return errUsage
}

func (a *App) printSong(s pb.Song) {
	fmt.Fprintf(a.out, "id:       %s\ntitle:    %s\nartist:   %s\nalbum:    %s\nformat:   %s\nfile:     %s\nplays:    %d\nfavorite: %t\n",
		s.ID, s.Title, s.Artist, s.Album, s.FileFormat, s.FilePath, s.PlayCount, s.IsFavorite)
	if s.Year != nil {
		fmt.Fprintf(a.out, "year:     %d\n", *s.Year)
	}
	if s.Rating != nil {
		fmt.Fprintf(a.out, "rating:   %d\n", *s.Rating)
	}
	if s.LastPlayedAt != nil {
		fmt.Fprintf(a.out, "played:   %s\n", s.LastPlayedAt.Format(time.RFC3339))
	}
}
