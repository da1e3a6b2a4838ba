package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/repository"
	"socialnet/internal/service"
)

// Fixture is the YAML document accepted by the seed command.
type Fixture struct {
	Users   []FixtureUser   `yaml:"users"`
	Posts   []FixturePost   `yaml:"posts"`
	Follows []FixtureFollow `yaml:"follows"`
}

// FixtureUser describes an account. Email is its key inside the fixture.
type FixtureUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Age      int    `yaml:"age"`
	Avatar   string `yaml:"avatar"`
}

// FixturePost describes a post with its comments and the users who like it.
type FixturePost struct {
	Author      string           `yaml:"author"`
	Description string           `yaml:"description"`
	Image       string           `yaml:"image"`
	Comments    []FixtureComment `yaml:"comments"`
	LikedBy     []string         `yaml:"liked_by"`
}

// FixtureComment describes a comment on the enclosing post.
type FixtureComment struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
	Image   string `yaml:"image"`
}

// FixtureFollow is a follow edge between two fixture users.
type FixtureFollow struct {
	Follower string `yaml:"follower"`
	Target   string `yaml:"target"`
}

// ParseFixture decodes and checks a fixture. Unknown fields are rejected.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" || u.Name == "" {
			return nil, fmt.Errorf("users[%d]: name, email and password are required", i)
		}
	}
	return &f, nil
}

// Stats counts what a seed run changed.
type Stats struct {
	UsersCreated int
	UsersReused  int
	Posts        int
	Comments     int
	Likes        int
	Follows      int
}

// Seeder applies a fixture through the services so every relationship stays mirrored.
type Seeder struct {
	Users    repository.UserRepository
	Auth     service.AuthService
	Social   service.UserService
	Posts    service.PostService
	Comments service.CommentService
}

// Seed creates missing users, then posts with their comments and likes, then follows.
func (s *Seeder) Seed(ctx context.Context, f *Fixture) (Stats, error) {
	var stats Stats
	ids := make(map[string]uuid.UUID, len(f.Users))

	for _, u := range f.Users {
		existing, err := s.Users.FindByEmail(ctx, u.Email)
		if err == nil {
			ids[u.Email] = existing.ID
			stats.UsersReused++
			continue
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return stats, fmt.Errorf("error checking user %s: %w", u.Email, err)
		}

		user, _, err := s.Auth.Register(ctx, service.RegisterInput{
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Age:      u.Age,
			Avatar:   u.Avatar,
		})
		if err != nil {
			return stats, fmt.Errorf("error creating user %s: %w", u.Email, err)
		}
		ids[u.Email] = user.ID
		stats.UsersCreated++
	}

	resolve := func(email string) (uuid.UUID, error) {
		id, ok := ids[email]
		if !ok {
			return uuid.Nil, fmt.Errorf("unknown fixture user %q", email)
		}
		return id, nil
	}

	for i, p := range f.Posts {
		authorID, err := resolve(p.Author)
		if err != nil {
			return stats, fmt.Errorf("posts[%d]: %w", i, err)
		}
		post, err := s.Posts.Create(ctx, authorID, service.CreatePostInput{Description: p.Description, Image: p.Image})
		if err != nil {
			return stats, fmt.Errorf("posts[%d]: %w", i, err)
		}
		stats.Posts++

		for j, c := range p.Comments {
			commenterID, err := resolve(c.Author)
			if err != nil {
				return stats, fmt.Errorf("posts[%d].comments[%d]: %w", i, j, err)
			}
			if _, err := s.Comments.Create(ctx, commenterID, post.ID, service.CreateCommentInput{Content: c.Content, Image: c.Image}); err != nil {
				return stats, fmt.Errorf("posts[%d].comments[%d]: %w", i, j, err)
			}
			stats.Comments++
		}

		for _, email := range p.LikedBy {
			fanID, err := resolve(email)
			if err != nil {
				return stats, fmt.Errorf("posts[%d].liked_by: %w", i, err)
			}
			if _, err := s.Posts.Like(ctx, fanID, post.ID); err != nil && !errors.Is(err, apperrors.ErrAlreadyLiked) {
				return stats, fmt.Errorf("posts[%d].liked_by: %w", i, err)
			}
			stats.Likes++
		}
	}

	for i, edge := range f.Follows {
		followerID, err := resolve(edge.Follower)
		if err != nil {
			return stats, fmt.Errorf("follows[%d]: %w", i, err)
		}
		targetID, err := resolve(edge.Target)
		if err != nil {
			return stats, fmt.Errorf("follows[%d]: %w", i, err)
		}
		_, err = s.Social.Follow(ctx, followerID, targetID)
		if errors.Is(err, apperrors.ErrAlreadyFollowing) {
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("follows[%d]: %w", i, err)
		}
		stats.Follows++
	}

	return stats, nil
}
