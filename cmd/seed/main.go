// Package main provides a tool to seed an archive database with example data.
//
// It can also hash an admin password for the ADMIN_PASSWORD_HASH setting:
//
//	archiv-seed -hash-password          # reads the password from stdin
//	DATA_PATH=~/Klausurarchiv/data archiv-seed
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klausurarchiv/archiv-server/internal/auth"
	"github.com/klausurarchiv/archiv-server/internal/domain"
	"github.com/klausurarchiv/archiv-server/internal/store/sqlite"
)

var hashPassword = flag.Bool("hash-password", false, "Hash a password read from stdin and exit")

func main() {
	flag.Parse()

	if *hashPassword {
		runHashPassword()
		return
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Klausurarchiv/data")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "archiv.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	courseID, err := st.CreateCourse(ctx, &domain.Course{
		LongName:  "Rocket Science",
		ShortName: "RS",
		Aliases:   []string{"Raketenwissenschaft"},
	})
	if err != nil {
		log.Fatalf("Failed to create course: %v", err)
	}

	folderID, err := st.CreateFolder(ctx, &domain.Folder{Name: "Shelf 2, Folder 3"})
	if err != nil {
		log.Fatalf("Failed to create folder: %v", err)
	}

	authorID, err := st.CreateAuthor(ctx, &domain.Author{Name: "Prof. Example"})
	if err != nil {
		log.Fatalf("Failed to create author: %v", err)
	}

	docID, err := st.CreateDocument(ctx, &domain.Document{
		Filename:     "exam-ws21.pdf",
		ContentType:  "application/pdf",
		Downloadable: true,
	})
	if err != nil {
		log.Fatalf("Failed to create document: %v", err)
	}

	date := "2021-12-03"
	itemID, err := st.CreateItem(ctx, &domain.Item{
		Name:      "Exam WS21",
		Date:      &date,
		Visible:   true,
		Documents: []int64{docID},
		Authors:   []int64{authorID},
		Courses:   []int64{courseID},
		Folders:   []int64{folderID},
	})
	if err != nil {
		log.Fatalf("Failed to create item: %v", err)
	}

	fmt.Printf("Seeded course=%d folder=%d author=%d document=%d item=%d\n",
		courseID, folderID, authorID, docID, itemID)
	fmt.Println("Note: the example document has no uploaded content yet.")
}

func runHashPassword() {
	fmt.Fprint(os.Stderr, "Password: ")

	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		log.Fatal("Password may not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
