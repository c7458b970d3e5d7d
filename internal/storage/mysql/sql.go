package mysql

const upsertPlaceSQL = `
INSERT INTO places
  (place_id, name, rating, ratings_total, raw, fetched_at)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  rating        = VALUES(rating),
  ratings_total = VALUES(ratings_total),
  raw           = COALESCE(VALUES(raw), places.raw),
  fetched_at    = VALUES(fetched_at),
  updated_at    = CURRENT_TIMESTAMP
`

const deleteReviewsSQL = `DELETE FROM place_reviews WHERE place_id = ?`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO place_reviews\n  (place_id, source_id, rating, lang, author, `text`, posted_at)\nVALUES "

// Duplicate source ids inside one batch keep the last row.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  rating    = VALUES(rating),\n" +
	"  lang      = VALUES(lang),\n" +
	"  author    = VALUES(author),\n" +
	"  `text`    = VALUES(`text`),\n" +
	"  posted_at = VALUES(posted_at)\n"

const insertMissSQL = `
INSERT INTO fetch_misses (place_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getPlaceSQL = `
SELECT place_id, name, rating, ratings_total, raw, fetched_at
FROM places
WHERE place_id = ?
`

const listReviewsSQL = "SELECT source_id, rating, lang, author, `text`, posted_at\n" +
	"FROM place_reviews\n" +
	"WHERE place_id = ?\n" +
	"ORDER BY posted_at DESC, id DESC"
