// Package storage manages the scraper's on-disk output tree.
//
// Posts are written under <base>/<YYYY-MM-DD>/<post_id>/ with the
// structured record in post_data.json, a readable rendering in
// post_data.txt, the post's images alongside them, and comment images
// under a comments/ subdirectory.
//
// Features:
//   - Duplicate detection seeded from files already on disk, so reruns
//     skip downloads that previously completed
//   - Atomic writes through a temporary file and rename
//   - Extension selection from the source filename or Content-Type
package storage
