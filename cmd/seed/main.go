package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bktutor/session-portal/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	tutors, err := seedUsers(context.Background(), pool, "TUTOR", 20)
	if err != nil {
		log.Fatalf("seed tutors: %v", err)
	}
	students, err := seedUsers(context.Background(), pool, "STUDENT", 500)
	if err != nil {
		log.Fatalf("seed students: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, tutors, students, 200); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}
	if err := seedNotifications(context.Background(), pool, students, 1000); err != nil {
		log.Fatalf("seed notifications: %v", err)
	}

	log.Println("seed complete")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, role string, count int) ([]string, error) {
	log.Printf("seeding %d users role=%s", count, role)

	const batchSize = 250

	ids := make([]string, 0, count)

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := fmt.Sprintf("%s%07d", rolePrefix(role), gofakeit.Number(1000000, 9999999))
			name := gofakeit.Name()
			email := fmt.Sprintf("%s@hcmut.edu.vn", id)

			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, role, score, conduct_points, scholarship_level, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NULL, NULL, NULL, now(), now())
				ON CONFLICT (id) DO NOTHING
			`, id, name, email, role)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	log.Printf("users seeded role=%s", role)
	return ids, nil
}

func rolePrefix(role string) string {
	if role == "TUTOR" {
		return "1"
	}
	return "2"
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, tutors, students []string, count int) error {
	log.Printf("seeding %d appointments", count)

	slotStarts := []int{7, 9, 13, 15, 17, 19}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		tutorID := tutors[gofakeit.Number(0, len(tutors)-1)]

		day := time.Now().AddDate(0, 0, gofakeit.Number(1, 7))
		hour := slotStarts[gofakeit.Number(0, len(slotStarts)-1)]
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.Local)
		end := start.Add(2 * time.Hour)

		maxSlot := gofakeit.Number(1, 10)
		booked := gofakeit.Number(0, maxSlot)
		slots := make([]string, 0, booked)
		for j := 0; j < booked && j < len(students); j++ {
			slots = append(slots, students[gofakeit.Number(0, len(students)-1)])
		}

		mode := "OFFLINE"
		place := fmt.Sprintf("H%d-%d0%d", gofakeit.Number(1, 6), gofakeit.Number(1, 5), gofakeit.Number(1, 9))
		if gofakeit.Bool() {
			mode = "ONLINE"
			place = "Google Meet"
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, tutor_id, name, start_time, end_time, place, mode, max_slot, current_slots, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'OPEN', now(), now())
		`, id, tutorID, gofakeit.Sentence(4), start, end, place, mode, maxSlot, slots)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}

func seedNotifications(ctx context.Context, pool *pgxpool.Pool, students []string, count int) error {
	log.Printf("seeding %d notifications", count)

	const batchSize = 250

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			userID := students[gofakeit.Number(0, len(students)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO notifications (id, user_id, title, message, link, is_read, created_at)
				VALUES ($1, $2, $3, $4, '', $5, now())
			`, uuid.New(), userID, "Thông báo", gofakeit.Sentence(8), gofakeit.Bool())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("notifications seeded: %d/%d", end, count)
	}

	log.Println("notifications seeded")
	return nil
}
