package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bktutor/session-portal/internal/auth"
	"github.com/bktutor/session-portal/internal/config"
	"github.com/bktutor/session-portal/internal/minutes"
	"github.com/bktutor/session-portal/internal/notify"
	"github.com/bktutor/session-portal/internal/portal"
	"github.com/bktutor/session-portal/internal/schedule"
)

// simulate walks the portal client through a full tutor session against a
// running api-server: list appointments, reschedule one, record minutes
// with a local export, then poll the notification feed.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulate starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	tutorID := os.Getenv("SIM_TUTOR_ID")
	if tutorID == "" {
		log.Fatal("SIM_TUTOR_ID is required")
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, 0).Sign(tutorID, "TUTOR")
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	client := portal.NewClient(cfg.CollabBaseURL, portal.StaticCredentials(token))
	store := portal.NewAppointmentStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	appts, err := store.List(ctx, portal.ListFilter{TutorID: tutorID})
	if err != nil {
		log.Fatalf("list appointments: %v", err)
	}
	log.Printf("loaded %d appointments for tutor %s", len(appts), tutorID)

	var target *portal.Appointment
	for i := range appts {
		if appts[i].Status == portal.StatusOpen {
			target = &appts[i]
			break
		}
	}
	if target == nil {
		log.Fatal("no open appointment to work with, run seed first")
	}
	log.Printf("working on %q (%s %s)", target.Name, target.Date(), target.TimeRange())

	// Move the session to the first slot of tomorrow.
	now := time.Now()
	sel := schedule.Selection{
		Date:      schedule.DateOptions(now)[0].Value,
		SlotIndex: 0,
		Mode:      target.Mode,
		MaxSlot:   target.MaxSlot,
		Place:     target.Place,
	}
	patch, err := schedule.BuildPatch(now, sel)
	if err != nil {
		log.Fatalf("build patch: %v", err)
	}

	updated, err := store.Update(ctx, target.ID, patch)
	if err != nil {
		log.Fatalf("reschedule: %v", err)
	}
	log.Printf("rescheduled to %s %s", updated.Date(), updated.TimeRange())

	// Record minutes for the session.
	rec := minutes.NewRecorder(client, minutes.DirDownloader{Dir: cfg.DownloadDir})
	rec.Initialize(*updated)
	rec.SetContent("Ôn tập giữa kỳ, giải đề mẫu.")
	for i := range rec.Rows() {
		if err := rec.SetResult(i, "Đạt"); err != nil {
			log.Fatalf("set result: %v", err)
		}
	}
	rec.AddFiles(minutes.AttachmentFromBytes("de-cuong.txt", []byte("Chương 1-5")))

	if err := rec.Save(ctx); err != nil {
		log.Fatalf("save minutes: %v", err)
	}
	log.Printf("minutes saved, export written to %s", cfg.DownloadDir)

	// Poll the feed briefly and report the badge.
	feed := notify.NewFeed(client, cfg.NotifyInterval)
	handle := feed.Start(ctx)

	time.Sleep(2 * time.Second)
	list, unread := feed.Snapshot()
	fmt.Printf("notifications=%d unread=%d badge=%q\n", len(list), unread, feed.Badge())

	if unread > 0 {
		feed.MarkRead(ctx, list[0].ID)
		log.Printf("marked notification %s read", list[0].ID)
	}

	handle.Stop()
	log.Println("simulate complete")
}
