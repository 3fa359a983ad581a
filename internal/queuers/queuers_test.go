package queuers_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"zcomx/internal/queue"
	"zcomx/internal/queuers"
	"zcomx/internal/testsupport"
)

func openQueue(t *testing.T) *queue.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	q, err := queue.Open(s.DB(), cfg, nil)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	return q
}

func TestCommandComposition(t *testing.T) {
	q := openQueue(t)

	cases := []struct {
		name   string
		queuer *queuers.Queuer
		want   string
	}{
		{
			name:   "bare program",
			queuer: queuers.NewPurgeTorrents(q),
			want:   "zcomx purge-torrents",
		},
		{
			name:   "id argument",
			queuer: queuers.NewCreateCBZ(q, 42),
			want:   "zcomx create-cbz 42",
		},
		{
			name:   "default scalar option",
			queuer: queuers.NewOptimizeCBZImg(q, "page one.png"),
			want:   "zcomx process-img --size cbz 'page one.png'",
		},
		{
			name:   "bool flag",
			queuer: queuers.NewReverseFileshareBook(q, 7),
			want:   "zcomx fileshare-book --reverse 7",
		},
		{
			name:   "delete flag and quoted path",
			queuer: queuers.NewNotifyP2PDelete(q, "/archive/cbz/My Book.cbz"),
			want:   "zcomx notify-p2p-networks --delete '/archive/cbz/My Book.cbz'",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.queuer.Command()
			if err != nil {
				t.Fatalf("Command: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCommandFlagsSorted(t *testing.T) {
	q := openQueue(t)

	qr := queuers.NewUpdateCreatorIndicia(q, 3)
	got, err := qr.Command()
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got != "zcomx update-creator-indicia -o -r 3" {
		t.Fatalf("unexpected command: %q", got)
	}
}

func TestCommandListOption(t *testing.T) {
	q := openQueue(t)

	qr := queuers.NewOptimizeImg(q, "cover.png")
	qr.CLIOpts = map[string]any{"--size": []string{"web", "cbz"}}
	got, err := qr.Command()
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got != "zcomx process-img --size web --size cbz cover.png" {
		t.Fatalf("unexpected command: %q", got)
	}
}

func TestCommandRejectsUnknownOption(t *testing.T) {
	q := openQueue(t)

	qr := queuers.NewCreateCBZ(q, 1)
	qr.CLIOpts = map[string]any{"--bogus": true}
	if _, err := qr.Command(); !errors.Is(err, queuers.ErrInvalidCLIOption) {
		t.Fatalf("expected ErrInvalidCLIOption, got %v", err)
	}
}

func TestJobDataPriorityAndStatus(t *testing.T) {
	q := openQueue(t)

	job, err := queuers.NewFileshareBook(q, 9).JobData()
	if err != nil {
		t.Fatalf("JobData: %v", err)
	}
	want, err := queue.PriorityFor("fileshare_book")
	if err != nil {
		t.Fatalf("PriorityFor: %v", err)
	}
	if job.Priority != want {
		t.Fatalf("priority = %d, want %d", job.Priority, want)
	}
	if job.Status != queue.StatusActive {
		t.Fatalf("status = %q, want active", job.Status)
	}
	if !strings.HasSuffix(job.Command, "fileshare-book 9") {
		t.Fatalf("unexpected command: %q", job.Command)
	}
}

func TestJobDataDelayShiftsStart(t *testing.T) {
	q := openQueue(t)

	qr := queuers.NewSearchPrefetch(q)
	qr.Delay = 30 * time.Second
	job, err := qr.JobData()
	if err != nil {
		t.Fatalf("JobData: %v", err)
	}
	if !job.Start.After(job.QueuedTime) {
		t.Fatalf("start %v must trail queued_time %v", job.Start, job.QueuedTime)
	}
}

func TestJobDataRejectsInvalidStatus(t *testing.T) {
	q := openQueue(t)

	qr := queuers.NewSearchPrefetch(q)
	qr.JobOpts.Status = "x"
	if _, err := qr.JobData(); !errors.Is(err, queuers.ErrInvalidJobOption) {
		t.Fatalf("expected ErrInvalidJobOption, got %v", err)
	}
}

func TestQueueInsertsJob(t *testing.T) {
	q := openQueue(t)
	ctx := context.Background()

	job, err := queuers.NewCreateBookTorrent(q, 5).Queue(ctx)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected inserted job id")
	}

	top, err := q.TopJob(ctx)
	if err != nil {
		t.Fatalf("TopJob: %v", err)
	}
	if top.ID != job.ID || top.Command != "zcomx create-torrent 5" {
		t.Fatalf("unexpected top job: %+v", top)
	}
}

func TestEveryCommandKindHasSpec(t *testing.T) {
	for _, kind := range queue.Commands() {
		spec, ok := queuers.SpecFor(kind)
		if !ok {
			t.Errorf("no spec for %s", kind)
			continue
		}
		if spec.Program == "" || !strings.HasPrefix(spec.Program, "zcomx ") {
			t.Errorf("spec %s has bad program %q", kind, spec.Program)
		}
	}
}
