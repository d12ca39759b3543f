package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zonegram/internal/aiservice"
	"zonegram/internal/api"
	"zonegram/internal/classifier"
	"zonegram/internal/domain"
	"zonegram/internal/feed"
	"zonegram/internal/store"
	"zonegram/internal/tagging"
	"zonegram/internal/zoneclass"
)

var (
	dbPath  string
	verbose bool
)

func main() {
	// Default database location
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".zonegram", "zonegram.db")

	rootCmd := &cobra.Command{
		Use:   "zonegram",
		Short: "Social feed with zone-based content classification",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(classifydCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

// buildClassifier wires the remote AI clients when their URLs are
// configured; without them every request takes the keyword fallback.
func buildClassifier(log *slog.Logger) *classifier.Classifier {
	var tagsClient classifier.TagExtractor
	var zonesClient classifier.ZoneClassifier

	if c, err := tagging.New(); err == nil {
		tagsClient = c
	} else {
		log.Debug("tagging service not configured", "error", err)
	}
	if c, err := zoneclass.New(); err == nil {
		zonesClient = c
	} else {
		log.Debug("classification service not configured", "error", err)
	}

	return classifier.New(tagsClient, zonesClient, log)
}

func zoneColor(zone domain.Zone) *color.Color {
	switch {
	case domain.EqualZones(zone, domain.ZoneProductivity):
		return color.New(color.FgBlue, color.Bold)
	case domain.EqualZones(zone, domain.ZoneEntertainment):
		return color.New(color.FgMagenta, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printResult(result *domain.ClassificationResult) {
	zoneColor(result.Zone).Printf("  zone: %s\n", result.Zone)
	if len(result.Zones) > 1 {
		fmt.Printf("  zones: %s\n", strings.Join(result.Zones, ", "))
	}
	if len(result.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(result.Tags, ", "))
	}
	if result.Source == domain.SourceFallback {
		fmt.Println("  (keyword fallback)")
	}
}

func addCmd() *cobra.Command {
	var username, userImage, image, customZone string
	var noClassify bool

	cmd := &cobra.Command{
		Use:   "add [caption]",
		Short: "Add a new post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caption := strings.Join(args, " ")
			log := logger()

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			post, err := s.AddPost(domain.Post{
				Username:   username,
				UserImage:  userImage,
				Image:      image,
				Caption:    caption,
				CustomZone: customZone,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added post: %s\n", post.ID[:8])
			fmt.Printf("Caption: %s\n", truncate(post.Caption, 80))

			if noClassify {
				fmt.Println("(skipped classification)")
				return nil
			}

			fmt.Print("Classifying... ")
			clf := buildClassifier(log)
			result, err := clf.Classify(context.Background(), caption, customZone)
			if err != nil {
				fmt.Printf("failed: %v\n", err)
				return nil
			}
			fmt.Println("done")

			if err := s.SetClassification(post.ID, result); err != nil {
				fmt.Printf("  warning: couldn't save classification: %v\n", err)
			}
			printResult(result)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "me", "author username")
	cmd.Flags().StringVar(&userImage, "user-image", "", "author image URL")
	cmd.Flags().StringVar(&image, "image", "", "post image URL")
	cmd.Flags().StringVar(&customZone, "zone", "", "custom zone name")
	cmd.Flags().BoolVar(&noClassify, "no-classify", false, "skip automatic classification")
	return cmd
}

func feedCmd() *cobra.Command {
	var zone string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the post feed, optionally filtered by zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			posts, err := s.ListPosts(limit, 0)
			if err != nil {
				return err
			}

			if zone != "" {
				posts = feed.Filter(posts, zone)
			}

			if len(posts) == 0 {
				fmt.Println("No posts to show. Use 'zonegram add' or 'zonegram seed'.")
				return nil
			}

			for _, p := range posts {
				badge := p.Zone
				if badge == "" {
					badge = p.CustomZone
				}
				if badge != "" {
					zoneColor(badge).Printf("[%s] ", badge)
				}
				fmt.Printf("%s  @%s  %d likes\n", p.ID[:8], p.Username, p.Likes)
				fmt.Printf("    %s\n", truncate(p.Caption, 70))
				if len(p.CustomTags) > 0 {
					fmt.Printf("    #%s\n", strings.Join(p.CustomTags, " #"))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "active zone filter")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of posts to show")
	return cmd
}

func classifyCmd() *cobra.Command {
	var customZone string

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			clf := buildClassifier(logger())
			result, err := clf.Classify(context.Background(), text, customZone)
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&customZone, "zone", "", "custom zone name")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			fd := feed.NewService(s, log)
			fd.Watch(s.Subscribe())

			server := api.New(s, fd, buildClassifier(log), addr, log)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

func classifydCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "classifyd",
		Short: "Start the Gemini-backed AI classification service",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			ai, err := aiservice.NewGemini(log)
			if err != nil {
				return err
			}

			server := aiservice.NewServer(ai, addr, log)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8090", "server address")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			clf := buildClassifier(logger())

			demo := []domain.Post{
				{
					Username: "john_doe",
					Image:    "https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d?w=800&h=800&fit=crop",
					Likes:    123,
					Caption:  "Coding day! 💻 #programming #developer",
				},
				{
					Username: "jane_smith",
					Image:    "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=800&h=800&fit=crop",
					Likes:    456,
					Caption:  "Another day at the office 🚀 #tech #work",
				},
				{
					Username: "tech_enthusiast",
					Image:    "https://images.unsplash.com/photo-1581091226825-a6a2a5aee158?w=800&h=800&fit=crop",
					Likes:    789,
					Caption:  "Setup of the day ⚡️ #setup #workspace",
				},
			}

			for _, p := range demo {
				post, err := s.AddPost(p)
				if err != nil {
					return err
				}
				result, err := clf.Classify(context.Background(), p.Caption, "")
				if err == nil {
					if err := s.SetClassification(post.ID, result); err != nil {
						fmt.Printf("  warning: couldn't classify seed post: %v\n", err)
					}
				}
				fmt.Printf("Seeded post %s (@%s)\n", post.ID[:8], post.Username)
			}

			return nil
		},
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
