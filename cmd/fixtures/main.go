// Command fixtures generates a synthetic Pulse dataset that the server can
// load with FIXTURES_DIR.
package main

import (
	"flag"
	"log"
	"time"

	"pulse/internal/seed"
)

func main() {
	out := flag.String("out", "./fixtures", "Directory to write the collections to")
	numUsers := flag.Int("users", 25, "Number of users to create")
	maxPosts := flag.Int("posts", 4, "Maximum posts per user")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	conversations := flag.Int("conversations", 6, "Conversations for the current user")
	messages := flag.Int("messages", 8, "Messages per conversation")
	notifications := flag.Int("notifications", 12, "Notifications for the current user")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	if *seedValue == 0 {
		*seedValue = time.Now().UnixNano()
	}

	log.Println("🌱 Fixture Generator")
	log.Println("====================")
	log.Printf("Target: %d users, seed=%d\n", *numUsers, *seedValue)

	ds, err := seed.NewFactory(seed.Options{
		Users:              *numUsers,
		MaxPostsPerUser:    *maxPosts,
		MaxCommentsPerPost: *maxComments,
		Conversations:      *conversations,
		MessagesPerThread:  *messages,
		Notifications:      *notifications,
		Seed:               *seedValue,
	}).Build()
	if err != nil {
		log.Fatalf("❌ Generation failed: %v", err)
	}

	if err := ds.WriteDir(*out); err != nil {
		log.Fatalf("❌ Write failed: %v", err)
	}

	log.Printf("✨ Wrote %d users, %d posts, %d comments, %d messages to %s\n",
		len(ds.Users), len(ds.Posts), len(ds.Comments), len(ds.Messages), *out)
}
