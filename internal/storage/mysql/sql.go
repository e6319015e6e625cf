package mysql

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (id, customer_id, package_id, travel_date, travellers, amount, status, notes, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Joined columns mirror domain.Booking; the package may have been deleted.
const selectBookingSQL = `
SELECT b.id, b.customer_id, c.name, c.email, c.phone,
       b.package_id, p.title,
       b.travel_date, b.travellers, b.amount, b.status, b.notes,
       b.created_at, b.updated_at
FROM bookings b
JOIN customers c ON c.id = b.customer_id
LEFT JOIN packages p ON p.id = b.package_id
`

const updateBookingDetailsSQL = `
UPDATE bookings SET travel_date = ?, travellers = ?, updated_at = ? WHERE id = ?
`

// -----------------------------------------------------------------------------
// CUSTOMERS
// -----------------------------------------------------------------------------

// id = LAST_INSERT_ID(id) makes LastInsertId return the existing row on update.
const upsertCustomerSQL = `
INSERT INTO customers (name, email, phone, segment, created_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id    = LAST_INSERT_ID(id),
  name  = VALUES(name),
  phone = COALESCE(VALUES(phone), customers.phone)
`

// Booking count covers every booking; lifetime value only confirmed ones.
const selectCustomerSQL = `
SELECT c.id, c.name, c.email, c.phone, c.segment, c.note, c.created_at,
       COUNT(b.id) AS booking_count,
       COALESCE(SUM(CASE WHEN b.status = 'confirmed' THEN b.amount END), 0) AS ltv
FROM customers c
LEFT JOIN bookings b ON b.customer_id = c.id
`

const groupCustomerSQL = ` GROUP BY c.id, c.name, c.email, c.phone, c.segment, c.note, c.created_at`

// -----------------------------------------------------------------------------
// PACKAGES
// -----------------------------------------------------------------------------

const packageColumns = `id, title, location, country, duration_days, price, min_group, max_group,
  featured, status, overview, itinerary, inclusions, exclusions, info, images, created_at, updated_at`

const insertPackageSQL = `
INSERT INTO packages
  (title, location, country, duration_days, price, min_group, max_group,
   featured, status, overview, itinerary, inclusions, exclusions, info, images, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePackageSQL = `
UPDATE packages SET
  title = ?, location = ?, country = ?, duration_days = ?, price = ?, min_group = ?, max_group = ?,
  featured = ?, status = ?, overview = ?, itinerary = ?, inclusions = ?, exclusions = ?, info = ?,
  images = ?, updated_at = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// BLOG
// -----------------------------------------------------------------------------

const postColumns = `id, title, category, author, status, read_time, cover_image, excerpt, content, created_at, updated_at`

const insertPostSQL = `
INSERT INTO blog_posts
  (title, category, author, status, read_time, cover_image, excerpt, content, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePostSQL = `
UPDATE blog_posts SET
  title = ?, category = ?, author = ?, status = ?, read_time = ?, cover_image = ?, excerpt = ?,
  content = ?, updated_at = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// HERO + AUDIT
// -----------------------------------------------------------------------------

const upsertHeroSQL = `
INSERT INTO hero_media (position, media_type, url, enabled, updated_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  media_type = VALUES(media_type),
  url        = VALUES(url),
  enabled    = VALUES(enabled),
  updated_at = VALUES(updated_at)
`

const insertAuditSQL = `
INSERT INTO audit_log (id, entity, action, actor, summary, link, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`
