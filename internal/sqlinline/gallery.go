// Package sqlinline holds the application's SQL. Each statement starts
// with a --sql marker so logs can reference queries without echoing
// their text.
package sqlinline

const QInsertImage = `--sql 3f7c1a52-9e4b-4d21-b6a8-0c5e92d417af
insert into gallery_images(id, image_url, prompt, created_at)
values ($1::uuid, $2::text, $3::text, now())
returning created_at;
`

const QSelectImageByID = `--sql b84d60e7-21c3-4fb9-8d52-6a9041fe23c8
select id, image_url, prompt, created_at
from gallery_images
where id = $1::uuid
limit 1;
`

const QListRecentImages = `--sql 7e25c9b1-4af8-4e06-9137-d82fb65c043e
select id, image_url, prompt, created_at
from gallery_images
order by created_at desc
limit $1::int;
`
