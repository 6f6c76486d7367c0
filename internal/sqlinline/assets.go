package sqlinline

const QCreateGeneratedAssets = `--sql 55f34efe-fc25-4613-9ec0-9331d2aa2eb3
create table if not exists generated_assets (
  id uuid primary key,
  call_id uuid not null,
  kind text not null,
  category text not null,
  identifier text not null,
  path text not null,
  source_url text not null default '',
  image_index int not null,
  format text not null,
  bytes bigint not null default 0,
  prompt text not null default '',
  created_at timestamptz not null default now()
);
`

const QCreateGeneratedAssetsIndex = `--sql 1ff4b999-c2d6-4bc4-b33a-3c2cd665aa85
create index if not exists generated_assets_created_at_idx
  on generated_assets (created_at desc);
`

const QInsertGeneratedAsset = `--sql 4286bc3e-6ccf-4a20-b44b-7b1776b3d731
insert into generated_assets(
  id,
  call_id,
  kind,
  category,
  identifier,
  path,
  source_url,
  image_index,
  format,
  bytes,
  prompt,
  created_at
) values (
  $1::uuid,
  $2::uuid,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::text,
  $8::int,
  $9::text,
  $10::bigint,
  $11::text,
  $12::timestamptz
)
on conflict (id) do nothing;
`

const QListRecentGeneratedAssets = `--sql 012e013c-c88d-4d47-8986-8d78342eb194
select
  id::text,
  call_id::text,
  kind,
  category,
  identifier,
  path,
  source_url,
  image_index,
  format,
  bytes,
  prompt,
  created_at
from generated_assets
order by created_at desc, image_index asc
limit $1::int;
`
