// Package reddit provides a client for Reddit's JSON API using app-only OAuth.
//
// This package includes:
//   - A configurable HTTP client with token handling and error classification
//   - Type-safe models for listings, posts, comments, and gallery metadata
//   - Helper functions for constructing listing and comment endpoints
//   - Flair filters applied while iterating a subreddit's "new" listing
//
// Example usage:
//
//	client := reddit.NewClient(&cfg.Reddit, log)
//
//	posts, err := client.FetchNewPosts("PhotoshopRequest", reddit.FlairPaid, 5)
//	if err != nil {
//	    if apiErr, ok := err.(*errors.Error); ok {
//	        switch apiErr.Type {
//	        case errors.ErrorTypeAuth:
//	            // Handle bad credentials
//	        case errors.ErrorTypeRateLimit:
//	            // Handle rate limit
//	        }
//	    }
//	}
//
//	for _, post := range posts {
//	    comments, err := client.FetchComments(post.ID)
//	    // Handle comments
//	}
package reddit
