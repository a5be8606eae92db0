// Package models defines the TMDB entities exchanged with the API and held in application state.
//
// The package contains three groups of types:
//
// 1. Catalogue DTOs: titles as returned by listing, search and detail endpoints
//   - [MovieSummary] : A movie or TV result with optional artwork and ratings
//   - [MovieDetails] : A summary plus genres, credits, videos and reviews
//   - [Page] : One page of results with pagination metadata
//
// 2. Account DTOs: the authenticated user and their lists
//   - [UserProfile] : The account mapped from GET /account
//   - [List] : A list summary from GET /account/{id}/lists
//   - [MovieList] : A list with its items from GET /list/{id}
//
// 3. Authentication DTOs: request tokens and sessions
//
// Every response type implements [Validator] so the services layer can reject malformed payloads before they reach the store.
// Fields the API may omit or null (poster_path, vote_average, ...) are pointers; accessors provide the fallback values.
package models
